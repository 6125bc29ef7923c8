package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/clipworks/clipctl/internal/api"
	"github.com/clipworks/clipctl/internal/session"
	"github.com/clipworks/clipctl/internal/shared"
)

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

func main() {
	logger := shared.NewLogger(nil)
	if os.Getenv("CLIPCTL_DEBUG") != "" {
		shared.SetLogLevel(logger, log.DebugLevel)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	store, err := session.NewFileStore(config.Session.TokenPath)
	if err != nil {
		logger.Fatalf("failed to open credential store: %v", err)
	}

	sessions := session.NewManager(session.ManagerOpts{
		Store:   store,
		BaseURL: config.API.BaseURL,
		OAuth:   identityConfig(config),
		Logger:  logger,
	})

	client := api.NewClient(api.ClientOpts{
		BaseURL:   config.API.BaseURL,
		Session:   sessions,
		RateLimit: config.API.RateLimit,
		Logger:    logger,
	})

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Session: sessions,
		Client:  client,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "clipctl",
		Usage:    "Upload, process, and organize short-form video clips",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize config file, cache database, and migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
