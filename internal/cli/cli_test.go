package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
)

func stubConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	previous := loadConfig
	loadConfig = func() (*config.Config, error) { return cfg, nil }
	t.Cleanup(func() {
		loadConfig = previous
		jsonOut = false
	})
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenIssue(t *testing.T) {
	stubConfig(t, &config.Config{Auth: config.AuthConfig{JWTSecret: "s3cret"}})

	out, err := run(t, "token", "issue", "--name", "Robin", "--email", "robin@example.com", "--json")
	require.NoError(t, err)

	var issued issuedToken
	require.NoError(t, json.Unmarshal([]byte(out), &issued))
	claims, err := auth.NewTokenManager("s3cret", 0).ParseToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "robin@example.com", claims.Email)
	assert.Equal(t, claims.ExpiresAt.Unix(), issued.ExpiresAt.Unix())
}

func TestTokenIssue_Errors(t *testing.T) {
	stubConfig(t, &config.Config{})
	_, err := run(t, "token", "issue", "--name", "Robin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")

	stubConfig(t, &config.Config{Auth: config.AuthConfig{JWTSecret: "s3cret"}})
	_, err = run(t, "token", "issue")
	assert.Error(t, err)
}

func TestAdminCommandsNeedDSN(t *testing.T) {
	stubConfig(t, &config.Config{})

	_, err := run(t, "migrate", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_DSN")
}

func TestSeedRequiresFile(t *testing.T) {
	stubConfig(t, &config.Config{})

	_, err := run(t, "seed")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "file"))
}
