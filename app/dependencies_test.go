package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/agent-authz/config"
	"github.com/upb/agent-authz/models"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Policy:      config.PolicyConfig{Source: config.PolicySourceBuiltin},
		Auth: config.AuthConfig{
			JWTSecret: "test-secret-0123456789",
			Issuer:    "agent-authz",
			TokenTTL:  time.Hour,
		},
		Audit: config.AuditConfig{
			BufferSize:      100,
			WorkerCount:     1,
			ShutdownTimeout: time.Second,
		},
		Credentials: config.CredentialsConfig{
			TTL:           time.Hour,
			RenewalMargin: 5 * time.Minute,
		},
	}
}

func TestNewDependenciesBuiltinSource(t *testing.T) {
	ctx := context.Background()
	deps, err := NewDependencies(ctx, testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, deps)

	assert.NotNil(t, deps.Engine)
	assert.NotNil(t, deps.RuleSource)
	assert.NotNil(t, deps.Audit)
	assert.NotNil(t, deps.Credentials)
	assert.NotNil(t, deps.Tokens)
	assert.NotNil(t, deps.AuthMiddleware)
	assert.NotNil(t, deps.PolicyMiddleware)
	assert.Nil(t, deps.DB)

	// Built-in rules are loaded and enforced.
	assert.Greater(t, deps.Engine.RuleSet().Len(), 0)
	dec := deps.Engine.Evaluate(models.Request{AgentID: "unknown", Action: "read"})
	assert.False(t, dec.Allowed)

	assert.NoError(t, deps.Close(ctx))
}

func TestNewDependenciesFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	doc := `{"rules":[{"id":"r1","agent_id":"agent-a","action":"read","effect":"allow","enabled":true}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg := testConfig()
	cfg.Policy = config.PolicyConfig{Source: config.PolicySourceFile, FilePath: path}

	ctx := context.Background()
	deps, err := NewDependencies(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, 1, deps.Engine.RuleSet().Len())
	dec := deps.Engine.Evaluate(models.Request{AgentID: "agent-a", Action: "read"})
	assert.True(t, dec.Allowed)

	assert.NoError(t, deps.Close(ctx))
}

func TestNewDependenciesUnknownSource(t *testing.T) {
	cfg := testConfig()
	cfg.Policy.Source = "consul"

	_, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown policy source")
}

func TestNewDependenciesEphemeralSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = ""

	ctx := context.Background()
	deps, err := NewDependencies(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	token, err := deps.Tokens.Issue("agent-a", nil)
	require.NoError(t, err)
	claims, err := deps.Tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "agent-a", claims.AgentID)

	assert.NoError(t, deps.Close(ctx))
}
