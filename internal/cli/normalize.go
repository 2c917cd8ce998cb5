package cli

import (
	"fmt"
	"io"

	"github.com/phrazzld/lexis/internal/domain"
	"github.com/spf13/cobra"
)

// NormalizedTerm pairs a raw term with its storage key.
type NormalizedTerm struct {
	Term       string `json:"term"`
	Normalized string `json:"normalized"`
	Empty      bool   `json:"empty,omitempty"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <term>...",
		Short: "Show the key each term is stored under",
		Long: `Normalize terms exactly as the server does before lookup: Unicode NFKC,
case folding, punctuation stripped and whitespace collapsed. Terms that
normalize to nothing would be rejected by the server.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]NormalizedTerm, 0, len(args))
			for _, term := range args {
				key := domain.NormalizeTerm(term)
				results = append(results, NormalizedTerm{Term: term, Normalized: key, Empty: key == ""})
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Print(results, func(w io.Writer) error {
				for _, r := range results {
					key := r.Normalized
					if r.Empty {
						key = "(empty)"
					}
					if _, err := fmt.Fprintf(w, "%s\t%s\n", r.Term, key); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
