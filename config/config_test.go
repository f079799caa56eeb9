package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/enciclo/control"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"API_BASE_URL", "API_LONG_TASK_URL", "API_ORIGIN", "API_USERNAME", "API_SECRET", "API_RATE_LIMIT", "APP_MODE", "ENCICLO_TOKEN_FILE"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ModeProduction, cfg.Mode)
	assert.Equal(t, 30*time.Second, cfg.GetTimeout())
	assert.Equal(t, 5*time.Minute, cfg.GetLongTaskTimeout())
	assert.Equal(t, 5*time.Minute, cfg.GetCheckInterval())
	assert.Equal(t, int64(100_000_000), cfg.Upload.MaxFileSize)
	assert.True(t, cfg.IsProduction())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Mode = ModeDevelopment
	cfg.API.BaseURL = "http://127.0.0.1:9000"
	cfg.API.Username = "ana"
	cfg.Session.CheckInterval = "30s"
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, 30*time.Second, loaded.GetCheckInterval())
	assert.False(t, loaded.IsProduction())
}

func TestLoad_MissingFileUsesDefaultsAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "https://api.{domain}/v2")
	t.Setenv("API_ORIGIN", "https://control.enciclo.es")
	t.Setenv("APP_MODE", ModeDevelopment)
	t.Setenv("ENCICLO_TOKEN_FILE", "/tmp/tok.json")
	t.Setenv("API_RATE_LIMIT", "4.5")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://api.{domain}/v2", cfg.API.BaseURL)
	assert.Equal(t, "https://control.enciclo.es", cfg.API.Origin)
	assert.Equal(t, ModeDevelopment, cfg.Mode)
	assert.Equal(t, "/tmp/tok.json", cfg.Session.TokenFile)
	assert.Equal(t, 4.5, cfg.API.RateLimit)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  username: file-user\n  secret: file-secret\n"), 0o600))
	t.Setenv("API_SECRET", "env-secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-user", cfg.API.Username)
	assert.Equal(t, "env-secret", cfg.API.Secret)
	// Unset keys keep their defaults.
	assert.Equal(t, DefaultConfig().API.BaseURL, cfg.API.BaseURL)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("bad rate limit env", func(t *testing.T) {
		t.Setenv("API_RATE_LIMIT", "fast")
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }},
		{"unknown mode", func(c *Config) { c.Mode = "staging" }},
		{"negative rate", func(c *Config) { c.API.RateLimit = -1 }},
		{"zero upload size", func(c *Config) { c.Upload.MaxFileSize = 0 }},
		{"bad duration", func(c *Config) { c.API.Timeout = "soon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), control.ErrValidation)
		})
	}
}

func TestParseDuration_Fallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Timeout = "garbage"
	assert.Equal(t, control.DefaultTimeout, cfg.GetTimeout())
	cfg.API.Timeout = "-1s"
	assert.Equal(t, control.DefaultTimeout, cfg.GetTimeout())
}
