package cli

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/lexis/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenSecret = "0123456789abcdef0123456789abcdef"

func TestTokenCommandMintsValidToken(t *testing.T) {
	out, err := execute(t, "token", "--secret", tokenSecret, "--subject", "phone", "--ttl", "1h")
	require.NoError(t, err)

	svc, err := auth.NewJWTService(tokenSecret)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "phone", claims.Subject)
}

func TestTokenCommandReadsSecretFromEnv(t *testing.T) {
	t.Setenv(SecretEnv, tokenSecret)

	out, err := execute(t, "--format", "json", "token")
	require.NoError(t, err)

	var got TokenResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "lexisctl", got.Subject)
	assert.NotEmpty(t, got.Token)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), got.ExpiresAt, time.Minute)
}

func TestTokenCommandErrors(t *testing.T) {
	t.Setenv(SecretEnv, "")

	tests := []struct {
		name string
		args []string
	}{
		{name: "no secret", args: []string{"token"}},
		{name: "short secret", args: []string{"token", "--secret", "short"}},
		{name: "zero ttl", args: []string{"token", "--secret", tokenSecret, "--ttl", "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}
