package commands

import (
	"io"
	"os"

	"github.com/wolfeidau/recipebook/internal/config"
)

type Globals struct {
	Debug       bool
	Config      string
	Ephemeral   bool
	APIKey      string
	DatabaseURL string
	SessionDir  string
	Version     string

	Out    io.Writer
	Prompt Prompter
}

func (g *Globals) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Globals) prompter() Prompter {
	if g.Prompt == nil {
		return huhPrompter{}
	}
	return g.Prompt
}

// resolveConfig layers flags and environment over the config file.
func (g *Globals) resolveConfig() (config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return cfg, err
	}

	return cfg.Overlay(config.Config{
		APIKey:      g.APIKey,
		DatabaseURL: g.DatabaseURL,
		SessionDir:  g.SessionDir,
	}), nil
}

// loadConfig resolves and validates the configuration for identity commands.
func (g *Globals) loadConfig() (config.Config, error) {
	cfg, err := g.resolveConfig()
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
