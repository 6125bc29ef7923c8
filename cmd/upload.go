package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/clipworks/clipctl/internal/models"
	"github.com/clipworks/clipctl/internal/poller"
)

// Upload submits a local video file and optionally watches the ingest job.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")

	r.logger.Info("uploading", "path", path)

	lastShown := -1
	result, err := r.client.Upload(ctx, path, func(percent int) {
		if percent-lastShown >= 10 || percent == 100 {
			lastShown = percent
			r.writePlain("\rUploading... %3d%%", percent)
		}
	})
	if err != nil {
		return err
	}
	r.writePlain("\n")

	r.lib.RecordUpload(models.VideoRecord{
		ID:           result.VideoID,
		Name:         result.Filename,
		UploadPath:   result.S3URL,
		ThumbnailURL: result.ThumbnailURL,
		Status:       "uploaded",
	})

	r.writePlain("✓ Uploaded %s (video %d)\n", result.Filename, result.VideoID)

	if !cmd.Bool("watch") || result.JobID == "" {
		if result.JobID != "" {
			r.writePlain("Ingest job: %s (watch with 'clipctl process watch %s')\n", result.JobID, result.JobID)
		}
		return nil
	}

	return r.watchJob(ctx, result.JobID)
}

// watchJob polls a job to completion, printing progress along the way.
func (r *Runner) watchJob(ctx context.Context, jobID string) error {
	watcher := poller.NewWatcher(r.client, jobID, r.pollOptions())
	watcher.Start(ctx)

	for state := range watcher.Updates() {
		r.writePlain("\r%s... %3d%%", state.Status, state.Progress)
	}
	r.writePlain("\n")

	res := <-watcher.Result()
	switch res.Phase {
	case poller.PhaseCompleted:
		r.writePlain("✓ Job %s completed\n", jobID)
		if res.State.ProcessedVideoPath != "" {
			r.writePlain("Output: %s\n", res.State.ProcessedVideoPath)
		}
		return nil
	case poller.PhaseFailed:
		return r.writePlain("✗ Job %s failed: %s\n", jobID, res.State.Error)
	default:
		return r.writePlain("✗ Lost contact with job %s: %v\n", jobID, res.Err)
	}
}

func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload a local video file",
		ArgsUsage: "<path>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Watch the ingest job until it finishes"},
		},
		Action: r.Upload,
	}
}
