package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "dsn: user:pass@tcp(localhost:3306)/thinkthink\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2333, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "http://localhost:2333", cfg.BaseURL)
	assert.True(t, cfg.ShouldAutoMigrate())
}

func TestLoadMissingDSN(t *testing.T) {
	path := writeConfig(t, "port: 8080\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dsn")
}

func TestLoadMissingFileWithEnv(t *testing.T) {
	t.Setenv("TT_DSN", "user:pass@tcp(db:3306)/thinkthink")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, "user:pass@tcp(db:3306)/thinkthink", cfg.DSN)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
dsn: from-file
jwt_secret: file-secret
ai:
  type: anthropic
  api_key: file-key
oauth:
  providers:
    - type: github
      enabled: true
      client_id: gh-client
mail:
  enable: true
`)

	t.Setenv("TT_DSN", "from-env")
	t.Setenv("TT_JWT_SECRET", "env-secret")
	t.Setenv("TT_AI_API_KEY", "env-key")
	t.Setenv("TT_OAUTH_GITHUB_SECRET", "env-gh-secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.DSN)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.Equal(t, "env-key", cfg.AI.APIKey)

	require.Len(t, cfg.OAuth.Providers, 1)
	assert.Equal(t, "gh-client", cfg.OAuth.Providers[0].ClientID)
	assert.Equal(t, "env-gh-secret", cfg.OAuth.Providers[0].ClientSecret)
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	path := writeConfig(t, "dsn: x\nbase_url: https://think.example.com/\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://think.example.com", cfg.BaseURL)
}

func TestAutoMigrateDisabled(t *testing.T) {
	path := writeConfig(t, "dsn: x\nauto_migrate: false\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.ShouldAutoMigrate())
}
