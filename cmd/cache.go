package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/clipworks/clipctl/internal/repositories"
)

// CacheSync pulls the backend collection into the local sqlite cache.
func (r *Runner) CacheSync(ctx context.Context, cmd *cli.Command) error {
	records, err := r.client.Videos(ctx)
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewVideoRepository(db)
	if err := repo.SyncFromBackend(records); err != nil {
		return err
	}

	r.logger.Info("cache synced", "records", len(records))
	return r.writePlain("✓ Synced %d videos to %s\n", len(records), r.config.Database.Path)
}

// CacheList lists the cached collection without touching the network.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewVideoRepository(db)
	videos, err := repo.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(videos, true)
	}

	r.writePlainHeader("Cached videos")
	for _, video := range videos {
		record := video.Record()
		r.writePlain("%6d  %-40s %s\n", record.ID, record.DisplayName(), record.Status)
	}
	return nil
}

func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Maintain the offline video cache",
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Sync the cache with the backend",
				Action: r.CacheSync,
			},
			{
				Name:  "list",
				Usage: "List cached videos without network access",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
				},
				Action: r.CacheList,
			},
		},
	}
}
