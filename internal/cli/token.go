package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/phrazzld/lexis/internal/service/auth"
	"github.com/spf13/cobra"
)

// SecretEnv is read when --secret is not given. It is the variable the
// server reads its signing secret from.
const SecretEnv = "LEXIS_AUTH_JWT_SECRET"

// TokenOptions holds flags for the token command.
type TokenOptions struct {
	Secret  string
	Subject string
	TTL     time.Duration
}

// TokenResult is a freshly signed token.
type TokenResult struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the API",
		Long: `Sign an HS256 bearer token with the server's secret. The secret is taken
from --secret or, when omitted, from ` + SecretEnv + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Secret, "secret", "", "signing secret (default $"+SecretEnv+")")
	cmd.Flags().StringVar(&opts.Subject, "subject", "lexisctl", "token subject, usually the device name")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 30*24*time.Hour, "token lifetime")

	return cmd
}

func runToken(rootOpts *RootOptions, opts *TokenOptions, cmd *cobra.Command) error {
	secret := opts.Secret
	if secret == "" {
		secret = os.Getenv(SecretEnv)
	}
	if secret == "" {
		return NewExitError(ExitCommandError, "no secret: pass --secret or set "+SecretEnv)
	}
	if opts.TTL <= 0 {
		return NewExitError(ExitCommandError, "--ttl must be positive")
	}

	svc, err := auth.NewJWTService(secret)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot sign token", err)
	}
	token, err := svc.GenerateToken(cmd.Context(), opts.Subject, opts.TTL)
	if err != nil {
		return WrapExitError(ExitFailure, "cannot sign token", err)
	}

	result := TokenResult{
		Token:     token,
		Subject:   opts.Subject,
		ExpiresAt: rootOpts.Now().Add(opts.TTL).Truncate(time.Second),
	}
	f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	return f.Print(result, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, token)
		return err
	})
}
