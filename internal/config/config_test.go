package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("CFT_JWT_SECRET", "env-secret")

	cfg, err := read(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 20, cfg.App.RecommendationWindow)
	assert.Equal(t, 10, cfg.App.PromptActivityLimit)
	assert.False(t, cfg.LLM.Enabled())
}

func TestRead_MissingSecretFails(t *testing.T) {
	t.Setenv("CFT_JWT_SECRET", "")

	_, err := read(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestLoad_KeepsFirstError(t *testing.T) {
	t.Setenv("CFT_JWT_SECRET", "")
	path := filepath.Join(t.TempDir(), "missing.yaml")

	cfg, err := Load(path)
	require.Error(t, err)
	assert.Nil(t, cfg)

	cfg, err = Load(path)
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestRead_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: 9000
database:
  driver: sqlite
  path: /tmp/test-carbon.db
jwt:
  secret: file-secret
llm:
  provider: anthropic
  api_key: file-key
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CFT_LOG_LEVEL", "debug")

	cfg, err := read(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/tmp/test-carbon.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.LLM.Enabled())
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Database: DatabaseConfig{Driver: "sqlite", Path: "x.db"},
			JWT:      JWTConfig{Secret: "s"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(*Config) {}, false},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }, true},
		{"postgres with dsn", func(c *Config) { c.Database.Driver = "postgres"; c.Database.DSN = "host=db" }, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mongo" }, true},
		{"empty secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"blank secret", func(c *Config) { c.JWT.Secret = "   " }, true},
		{"placeholder secret", func(c *Config) { c.JWT.Secret = "change-me" }, true},
		{"bad provider", func(c *Config) { c.LLM.APIKey = "k"; c.LLM.Provider = "other" }, true},
		{"provider ignored when disabled", func(c *Config) { c.LLM.Provider = "other" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
