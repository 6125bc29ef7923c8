package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/clipworks/clipctl/internal/library"
	"github.com/clipworks/clipctl/internal/shared"
)

// ProcessSpeakers lists the speakers detected in an uploaded video.
func (r *Runner) ProcessSpeakers(ctx context.Context, cmd *cli.Command) error {
	videoID := int64(cmd.Int("id"))

	speakers, err := r.client.DetectSpeakers(ctx, videoID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(speakers, true)
	}

	r.writePlainHeader(fmt.Sprintf("Speakers in video %d", videoID))
	for _, speaker := range speakers {
		r.writePlain("%3d  %s\n", speaker.ID, speaker.ThumbnailPath)
	}
	return nil
}

// ProcessStart submits a processing job. With --speakers it runs
// speaker-framed processing; otherwise basic processing, optionally with
// captions.
func (r *Runner) ProcessStart(ctx context.Context, cmd *cli.Command) error {
	videoID := int64(cmd.Int("id"))
	speakers := cmd.IntSlice("speakers")

	var jobID string
	var err error
	if len(speakers) > 0 {
		selected := make([]int, len(speakers))
		for i, id := range speakers {
			selected[i] = int(id)
		}
		jobID, err = r.lib.RequestProcessing(ctx, videoID, selected)
	} else {
		jobID, err = r.lib.RequestSimpleProcessing(ctx, videoID, cmd.Bool("captions"))
	}
	if err != nil {
		return err
	}

	r.writePlain("✓ Job %s started for video %d\n", jobID, videoID)

	if !cmd.Bool("watch") {
		return r.writePlain("Watch with 'clipctl process watch %s'\n", jobID)
	}
	return r.watchJob(ctx, jobID)
}

// ProcessStatus prints a job's current state.
func (r *Runner) ProcessStatus(ctx context.Context, cmd *cli.Command) error {
	jobID := cmd.StringArg("job")
	if jobID == "" {
		return fmt.Errorf("%w: job id", shared.ErrMissingArgument)
	}

	state, err := r.client.JobStatus(ctx, jobID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(state, true)
	}

	r.writePlain("Job:      %s (%s)\n", state.JobID, state.JobType)
	r.writePlain("Status:   %s\n", state.Status)
	r.writePlain("Progress: %d%%\n", state.Progress)
	if state.ProcessedVideoPath != "" {
		r.writePlain("Output:   %s\n", state.ProcessedVideoPath)
	}
	return nil
}

// ProcessWatch polls a job until it reaches a terminal state.
func (r *Runner) ProcessWatch(ctx context.Context, cmd *cli.Command) error {
	jobID := cmd.StringArg("job")
	if jobID == "" {
		return fmt.Errorf("%w: job id", shared.ErrMissingArgument)
	}
	return r.watchJob(ctx, jobID)
}

// ProcessBatch submits basic processing for several videos at once and waits
// for all of them.
func (r *Runner) ProcessBatch(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.IntSlice("id")
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one --id", shared.ErrMissingArgument)
	}

	videoIDs := make([]int64, len(ids))
	for i, id := range ids {
		videoIDs[i] = int64(id)
	}

	engine := library.NewBatchEngine(r.lib, r.config.API.RateLimit, r.pollOptions(), r.logger)

	go func() {
		for update := range engine.Updates() {
			r.writePlain("[%d/%d] %s %s\n", update.Step, update.Total, update.Phase, update.Message)
		}
	}()

	results, err := engine.Run(ctx, videoIDs, cmd.Bool("captions"))
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			r.writePlain("✗ Video %d: %v\n", res.VideoID, res.Err)
		} else {
			r.writePlain("✓ Video %d: %s (job %s)\n", res.VideoID, res.Phase, res.JobID)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d videos failed", failed, len(results))
	}
	return r.writePlain("✓ Batch complete (%d videos)\n", len(results))
}

func processCommand(r *Runner) *cli.Command {
	idFlag := &cli.IntFlag{Name: "id", Usage: "Video ID", Required: true}
	jsonFlag := &cli.BoolFlag{Name: "json", Usage: "Output as JSON"}

	return &cli.Command{
		Name:  "process",
		Usage: "Run processing jobs on uploaded videos",
		Commands: []*cli.Command{
			{
				Name:   "speakers",
				Usage:  "List speakers detected in a video",
				Flags:  []cli.Flag{idFlag, jsonFlag},
				Action: r.ProcessSpeakers,
			},
			{
				Name:  "start",
				Usage: "Start a processing job",
				Flags: []cli.Flag{
					idFlag,
					&cli.IntSliceFlag{Name: "speakers", Usage: "Speaker IDs to frame (max 3)"},
					&cli.BoolFlag{Name: "captions", Usage: "Generate automatic captions (basic processing only)"},
					&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Watch the job until it finishes"},
				},
				Action: r.ProcessStart,
			},
			{
				Name:      "status",
				Usage:     "Show a job's current state",
				ArgsUsage: "<job>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "job"},
				},
				Flags:  []cli.Flag{jsonFlag},
				Action: r.ProcessStatus,
			},
			{
				Name:      "watch",
				Usage:     "Watch a job until it finishes",
				ArgsUsage: "<job>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "job"},
				},
				Action: r.ProcessWatch,
			},
			{
				Name:  "batch",
				Usage: "Process several videos at once",
				Flags: []cli.Flag{
					&cli.IntSliceFlag{Name: "id", Usage: "Video ID (repeatable, max 3)"},
					&cli.BoolFlag{Name: "captions", Usage: "Generate automatic captions"},
				},
				Action: r.ProcessBatch,
			},
		},
	}
}
