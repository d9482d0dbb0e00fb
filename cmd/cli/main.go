package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/recipebook/cmd/cli/internal/commands"
	"github.com/wolfeidau/recipebook/internal/logger"
	"github.com/wolfeidau/recipebook/internal/telemetry"
)

var (
	version = "dev"
	cli     struct {
		Signup   commands.SignupCmd   `cmd:"" help:"Create an account"`
		Login    commands.LoginCmd    `cmd:"" help:"Sign in with email and password"`
		Logout   commands.LogoutCmd   `cmd:"" help:"End the current session"`
		Whoami   commands.WhoamiCmd   `cmd:"" help:"Show the current session"`
		Session  commands.SessionCmd  `cmd:"" help:"Session commands"`
		Recipes  commands.RecipesCmd  `cmd:"" help:"Manage the recipe collection"`
		Shopping commands.ShoppingCmd `cmd:"" help:"Manage the shopping list"`

		Debug       bool   `help:"Enable debug mode."`
		Config      string `help:"Config file path, defaults to ~/.recipebook/config.yaml" type:"path" env:"RECIPEBOOK_CONFIG"`
		APIKey      string `name:"api-key" help:"Identity service API key" env:"RECIPEBOOK_API_KEY"`
		DatabaseURL string `name:"database-url" help:"Recipe database URL" env:"RECIPEBOOK_DATABASE_URL"`
		SessionDir  string `help:"Directory holding the stored session" type:"path" env:"RECIPEBOOK_SESSION_DIR"`
		Ephemeral   bool   `help:"Keep the session in memory only."`
		Otel        bool   `help:"Export traces and metrics over OTLP." env:"RECIPEBOOK_OTEL"`
		Version     kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("recipebook"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	log.Logger = logger.Setup(cli.Debug)

	var shutdown telemetry.ShutdownFunc = telemetry.Noop
	if cli.Otel {
		var err error
		shutdown, err = telemetry.InitTelemetry(ctx, "recipebook", version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
			shutdown = telemetry.Noop
		}
	}

	err := cmd.Run(&commands.Globals{
		Debug:       cli.Debug,
		Config:      cli.Config,
		Ephemeral:   cli.Ephemeral,
		APIKey:      cli.APIKey,
		DatabaseURL: cli.DatabaseURL,
		SessionDir:  cli.SessionDir,
		Version:     version,
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := shutdown(shutdownCtx); serr != nil {
		log.Error().Err(serr).Msg("Failed to shutdown telemetry")
	}

	cmd.FatalIfErrorf(err)
}
