package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/clipworks/clipctl/internal/shared"
)

// Setup creates the config file if missing, opens the cache database, and
// applies migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		r.logger.Warnf("config: %v", err)
	} else {
		r.writePlain("✓ Created %s\n", configPath)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("database ready", "path", r.config.Database.Path)
	return r.writePlain("✓ Cache database initialized at %s\n", r.config.Database.Path)
}
