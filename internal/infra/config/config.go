// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Playback PlaybackConfig `yaml:"playback"`
	Media    MediaConfig    `yaml:"media"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig represents the streaming server connection.
type APIConfig struct {
	BaseURL    string `yaml:"base_url" validate:"required,url"`
	Token      string `yaml:"token"`
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	TimeoutSec int    `yaml:"timeout_sec" default:"15" validate:"gte=1,lte=120"`
}

// PlaybackConfig represents playback behavior configuration.
type PlaybackConfig struct {
	Volume      float64 `yaml:"volume" default:"1.0" validate:"gte=0,lte=1"`
	SearchLimit int     `yaml:"search_limit" default:"20" validate:"gte=1,lte=50"`
}

// MediaConfig represents the media adapter configuration. Settings are
// adapter-specific and decoded by the adapter itself.
type MediaConfig struct {
	Type     string         `yaml:"type" default:"timed"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	File  string `yaml:"file"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("CADENZA_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CADENZA_API_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv("CADENZA_EMAIL"); v != "" {
		c.API.Email = v
	}
	if v := os.Getenv("CADENZA_PASSWORD"); v != "" {
		c.API.Password = v
	}
	if v := os.Getenv("CADENZA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// Timeout returns the API request timeout as a duration.
func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// HasCredentials reports whether enough is configured to authenticate,
// either with a stored token or with email and password.
func (c *APIConfig) HasCredentials() bool {
	return c.Token != "" || (c.Email != "" && c.Password != "")
}
