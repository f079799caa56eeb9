// Package config loads the console client configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/enciclo/control"
	"gopkg.in/yaml.v3"
)

// Modes accepted in Config.Mode.
const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// Config is the complete client configuration.
type Config struct {
	Mode    string        `yaml:"mode"`
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Upload  UploadConfig  `yaml:"upload"`
}

// APIConfig describes the backend. BaseURL and LongTaskURL may contain the
// {domain} placeholder, filled from Origin.
type APIConfig struct {
	BaseURL         string  `yaml:"base_url"`
	LongTaskURL     string  `yaml:"long_task_url"`
	Origin          string  `yaml:"origin"`
	Timeout         string  `yaml:"timeout"`
	LongTaskTimeout string  `yaml:"long_task_timeout"`
	RateLimit       float64 `yaml:"rate_limit"` // calls per second, 0 = unlimited
	RateBurst       int     `yaml:"rate_burst"`
	Username        string  `yaml:"username,omitempty"`
	Secret          string  `yaml:"secret,omitempty"`
}

// SessionConfig controls token persistence and background re-validation.
type SessionConfig struct {
	TokenFile     string `yaml:"token_file"`
	CheckInterval string `yaml:"check_interval"`
}

// UploadConfig bounds repository uploads.
type UploadConfig struct {
	MaxFileSize int64   `yaml:"max_file_size"` // bytes
	RateLimit   float64 `yaml:"rate_limit"`    // files per second, 0 = unlimited
	Concurrency int     `yaml:"concurrency"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Mode: ModeProduction,
		API: APIConfig{
			BaseURL:         "https://api.{domain}",
			LongTaskURL:     "https://tasks.{domain}",
			Timeout:         control.DefaultTimeout.String(),
			LongTaskTimeout: control.LongTaskTimeout.String(),
			RateBurst:       1,
		},
		Session: SessionConfig{
			TokenFile:     DefaultTokenPath(),
			CheckInterval: (5 * time.Minute).String(),
		},
		Upload: UploadConfig{
			MaxFileSize: 100_000_000,
			RateLimit:   2,
			Concurrency: 2,
		},
	}
}

// DefaultPath returns the per-user configuration file path.
func DefaultPath() string {
	return filepath.Join(userDir(), "config.yaml")
}

// DefaultTokenPath returns the per-user token file path.
func DefaultTokenPath() string {
	return filepath.Join(userDir(), control.TokenName+".json")
}

func userDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "enciclo")
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file. Credentials are written
// too, so the file is private to the user.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("API_LONG_TASK_URL"); v != "" {
		c.API.LongTaskURL = v
	}
	if v := os.Getenv("API_ORIGIN"); v != "" {
		c.API.Origin = v
	}
	if v := os.Getenv("API_USERNAME"); v != "" {
		c.API.Username = v
	}
	if v := os.Getenv("API_SECRET"); v != "" {
		c.API.Secret = v
	}
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("API_RATE_LIMIT: %w", err)
		}
		c.API.RateLimit = f
	}
	if v := os.Getenv("APP_MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("ENCICLO_TOKEN_FILE"); v != "" {
		c.Session.TokenFile = v
	}
	return nil
}

// GetTimeout returns the default call timeout.
func (c *Config) GetTimeout() time.Duration {
	return parseDuration(c.API.Timeout, control.DefaultTimeout)
}

// GetLongTaskTimeout returns the long-task call timeout.
func (c *Config) GetLongTaskTimeout() time.Duration {
	return parseDuration(c.API.LongTaskTimeout, control.LongTaskTimeout)
}

// GetCheckInterval returns the session re-validation interval.
func (c *Config) GetCheckInterval() time.Duration {
	return parseDuration(c.Session.CheckInterval, 5*time.Minute)
}

// IsProduction reports whether the client runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Mode != ModeDevelopment
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate checks the configuration for values the client cannot run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url not configured (set API_BASE_URL): %w", control.ErrValidation)
	}
	if c.Mode != ModeProduction && c.Mode != ModeDevelopment {
		return fmt.Errorf("invalid mode %q (valid: %s, %s): %w", c.Mode, ModeProduction, ModeDevelopment, control.ErrValidation)
	}
	if c.API.RateLimit < 0 || c.Upload.RateLimit < 0 {
		return fmt.Errorf("rate limits must not be negative: %w", control.ErrValidation)
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload.max_file_size must be positive: %w", control.ErrValidation)
	}
	for name, v := range map[string]string{
		"api.timeout":            c.API.Timeout,
		"api.long_task_timeout":  c.API.LongTaskTimeout,
		"session.check_interval": c.Session.CheckInterval,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%s: %w: %w", name, err, control.ErrValidation)
		}
	}
	return nil
}
