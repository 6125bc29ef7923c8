package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/clipworks/clipctl/internal/models"
	"github.com/clipworks/clipctl/internal/shared"
)

// VideosList prints the video collection, split into uploaded and processed
// lists.
func (r *Runner) VideosList(ctx context.Context, cmd *cli.Command) error {
	if err := r.lib.FetchAll(ctx); err != nil {
		return err
	}

	uploaded := r.lib.Uploaded()
	processed := r.lib.Processed()

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"uploaded":  uploaded,
			"processed": processed,
		}, true)
	}

	r.writePlainHeader(fmt.Sprintf("Uploaded (%d)", len(uploaded)))
	for _, record := range uploaded {
		r.writePlain("%6d  %-40s %s\n", record.ID, record.DisplayName(), record.Status)
	}

	r.writePlainHeader(fmt.Sprintf("Processed (%d)", len(processed)))
	for _, record := range processed {
		r.writePlain("%6d  %-40s %s\n", record.ID, record.DisplayName(), record.ProcessedPath)
	}
	return nil
}

// VideosRename changes a video's display name.
func (r *Runner) VideosRename(ctx context.Context, cmd *cli.Command) error {
	videoID := int64(cmd.Int("id"))
	name := cmd.StringArg("name")

	if err := r.lib.FetchAll(ctx); err != nil {
		return err
	}
	if err := r.lib.Rename(ctx, videoID, name); err != nil {
		return err
	}
	return r.writePlain("✓ Renamed video %d to '%s'\n", videoID, name)
}

// VideosDelete removes one or both renditions of a video.
func (r *Runner) VideosDelete(ctx context.Context, cmd *cli.Command) error {
	videoID := int64(cmd.Int("id"))
	part := models.Part(cmd.String("part"))

	if err := r.lib.FetchAll(ctx); err != nil {
		return err
	}
	if err := r.lib.Delete(ctx, videoID, part); err != nil {
		return err
	}

	if _, stillThere := r.lib.Find(videoID); stillThere {
		return r.writePlain("✓ Deleted %s rendition of video %d\n", part, videoID)
	}
	return r.writePlain("✓ Deleted video %d\n", videoID)
}

// VideosDownload resolves a download link for a video rendition.
func (r *Runner) VideosDownload(ctx context.Context, cmd *cli.Command) error {
	videoID := int64(cmd.Int("id"))
	part := models.Part(cmd.String("part"))

	url, err := r.lib.DownloadURL(ctx, videoID, part)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", url)
}

// VideosPlay resolves the playback link for a processed video.
func (r *Runner) VideosPlay(ctx context.Context, cmd *cli.Command) error {
	videoID := int64(cmd.Int("id"))

	url, err := r.client.ProcessedVideoURL(ctx, videoID)
	if err != nil {
		return err
	}
	if url == "" {
		return fmt.Errorf("%w: video %d has no processed rendition", shared.ErrNotFound, videoID)
	}
	return r.writePlain("%s\n", url)
}

func videosCommand(r *Runner) *cli.Command {
	idFlag := &cli.IntFlag{Name: "id", Usage: "Video ID", Required: true}

	return &cli.Command{
		Name:  "videos",
		Usage: "Browse and manage the video collection",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List uploaded and processed videos",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
				},
				Action: r.VideosList,
			},
			{
				Name:      "rename",
				Usage:     "Rename a video",
				ArgsUsage: "<name>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  []cli.Flag{idFlag},
				Action: r.VideosRename,
			},
			{
				Name:  "delete",
				Usage: "Delete one or both renditions of a video",
				Flags: []cli.Flag{
					idFlag,
					&cli.StringFlag{Name: "part", Usage: "Rendition to delete: upload, processed, or both", Value: "both"},
				},
				Action: r.VideosDelete,
			},
			{
				Name:  "download",
				Usage: "Resolve a download link",
				Flags: []cli.Flag{
					idFlag,
					&cli.StringFlag{Name: "part", Usage: "Rendition to download: upload or processed", Value: "processed"},
				},
				Action: r.VideosDownload,
			},
			{
				Name:   "play",
				Usage:  "Resolve the playback link for a processed video",
				Flags:  []cli.Flag{idFlag},
				Action: r.VideosPlay,
			},
		},
	}
}
