package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/recipebook/internal/auth"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, auth.DefaultSignUpURL, cfg.SignUpURL)
	assert.Equal(t, auth.DefaultSignInURL, cfg.SignInURL)
	assert.Equal(t, "userData", cfg.StorageKey)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
}

func TestLoad(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
api_key: test-key
database_url: https://recipes.example.com
timeout: 5s
`), 0600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "test-key", cfg.APIKey)
		assert.Equal(t, "https://recipes.example.com", cfg.DatabaseURL)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, auth.DefaultSignInURL, cfg.SignInURL)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api_key: [unterminated"), 0600))

		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestOverlay(t *testing.T) {
	base := Default()
	base.APIKey = "from-file"

	cfg := base.Overlay(Config{APIKey: "from-flag", SessionDir: "/tmp/sessions"})
	assert.Equal(t, "from-flag", cfg.APIKey)
	assert.Equal(t, "/tmp/sessions", cfg.SessionDir)
	assert.Equal(t, base.SignUpURL, cfg.SignUpURL)

	assert.Equal(t, base, base.Overlay(Config{}))
}

func TestGateway(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "k"

	assert.Equal(t, auth.GatewayConfig{
		APIKey:    "k",
		SignUpURL: auth.DefaultSignUpURL,
		SignInURL: auth.DefaultSignInURL,
	}, cfg.Gateway())
}
