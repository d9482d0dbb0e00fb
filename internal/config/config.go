// Package config loads the recipebook client configuration from an optional
// YAML file. Command line flags and environment variables are layered on top
// by the CLI with Overlay.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/recipebook/internal/auth"
	"github.com/wolfeidau/recipebook/internal/session"
	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingAPIKey is returned when no identity API key has been configured.
	ErrMissingAPIKey = errors.New("identity API key is not configured")

	// ErrMissingDatabaseURL is returned when recipe commands run without a database URL.
	ErrMissingDatabaseURL = errors.New("recipe database URL is not configured")
)

const (
	dirName  = ".recipebook"
	fileName = "config.yaml"
)

// Config holds the identity, database and local storage settings.
type Config struct {
	APIKey      string        `yaml:"api_key"`
	SignUpURL   string        `yaml:"sign_up_url"`
	SignInURL   string        `yaml:"sign_in_url"`
	DatabaseURL string        `yaml:"database_url"`
	SessionDir  string        `yaml:"session_dir"`
	StorageKey  string        `yaml:"storage_key"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Default returns the built in configuration.
func Default() Config {
	return Config{
		SignUpURL:  auth.DefaultSignUpURL,
		SignInURL:  auth.DefaultSignInURL,
		StorageKey: session.DefaultKey,
		Timeout:    30 * time.Second,
	}
}

// DefaultPath is ~/.recipebook/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dirName, fileName), nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("path", path).Msg("no config file, using defaults")
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	log.Debug().Str("path", path).Msg("config loaded")

	return cfg.Overlay(file), nil
}

// Overlay returns c with every non-zero field of o applied.
func (c Config) Overlay(o Config) Config {
	if o.APIKey != "" {
		c.APIKey = o.APIKey
	}
	if o.SignUpURL != "" {
		c.SignUpURL = o.SignUpURL
	}
	if o.SignInURL != "" {
		c.SignInURL = o.SignInURL
	}
	if o.DatabaseURL != "" {
		c.DatabaseURL = o.DatabaseURL
	}
	if o.SessionDir != "" {
		c.SessionDir = o.SessionDir
	}
	if o.StorageKey != "" {
		c.StorageKey = o.StorageKey
	}
	if o.Timeout > 0 {
		c.Timeout = o.Timeout
	}
	return c
}

// Validate checks the settings every command needs.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Gateway returns the identity gateway settings.
func (c Config) Gateway() auth.GatewayConfig {
	return auth.GatewayConfig{
		APIKey:    c.APIKey,
		SignUpURL: c.SignUpURL,
		SignInURL: c.SignInURL,
	}
}
