package library

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/clipworks/clipctl/internal/poller"
	"github.com/clipworks/clipctl/internal/shared"
)

// BatchPhase tracks where a batch run is in its lifecycle.
type BatchPhase int

const (
	BatchQueued BatchPhase = iota
	BatchSubmitting
	BatchWatching
	BatchDone
)

func (p BatchPhase) String() string {
	switch p {
	case BatchQueued:
		return "queued"
	case BatchSubmitting:
		return "submitting"
	case BatchWatching:
		return "watching"
	case BatchDone:
		return "done"
	default:
		return "unknown"
	}
}

// ProgressUpdate is a progress message emitted during a batch run.
type ProgressUpdate struct {
	Phase   BatchPhase
	Step    int
	Total   int
	Message string
	Data    any
}

// BatchResult is the outcome of one video in a batch.
type BatchResult struct {
	VideoID int64
	JobID   string
	Phase   poller.Phase
	Err     error
}

// BatchEngine submits processing jobs for many videos at once, throttled so
// a large batch does not hammer the backend, and watches every submitted job
// to completion.
type BatchEngine struct {
	library *Library
	limiter *rate.Limiter
	poll    poller.Options
	logger  *log.Logger
	updates chan ProgressUpdate
}

// NewBatchEngine creates a batch engine. The submit rate is in requests per
// second; zero or negative disables throttling.
func NewBatchEngine(library *Library, submitRate float64, poll poller.Options, logger *log.Logger) *BatchEngine {
	var limiter *rate.Limiter
	if submitRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(submitRate), 1)
	}
	return &BatchEngine{
		library: library,
		limiter: limiter,
		poll:    poll,
		logger:  logger,
		updates: make(chan ProgressUpdate, 16),
	}
}

// Updates streams progress messages. Sends never block.
func (e *BatchEngine) Updates() <-chan ProgressUpdate {
	return e.updates
}

// Run submits a simple-processing job for every video id and waits for all
// of them to finish. A batch larger than MaxSelections is rejected before
// anything is submitted. Results come back in submission order. Submission
// failures are recorded per video and do not stop the rest of the batch.
func (e *BatchEngine) Run(ctx context.Context, videoIDs []int64, autoCaptions bool) ([]BatchResult, error) {
	defer close(e.updates)

	if len(videoIDs) > MaxSelections {
		return nil, fmt.Errorf("%w: at most %d videos per batch", shared.ErrInvalidInput, MaxSelections)
	}

	total := len(videoIDs)
	results := make([]BatchResult, total)
	var wg sync.WaitGroup

	for i, videoID := range videoIDs {
		results[i] = BatchResult{VideoID: videoID}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				results[i].Err = err
				continue
			}
		}

		e.sendProgress(ProgressUpdate{
			Phase: BatchSubmitting, Step: i + 1, Total: total,
			Message: "submitting processing job",
		})

		jobID, err := e.library.RequestSimpleProcessing(ctx, videoID, autoCaptions)
		if err != nil {
			results[i].Err = err
			if e.logger != nil {
				e.logger.Error("batch submit failed", "video_id", videoID, "error", err)
			}
			continue
		}
		results[i].JobID = jobID

		watcher := poller.NewWatcher(e.library.backend, jobID, e.poll)
		watcher.Start(ctx)

		wg.Add(1)
		go func(i int, videoID int64, watcher *poller.Watcher) {
			defer wg.Done()
			res := <-watcher.Result()
			results[i].Phase = res.Phase
			results[i].Err = res.Err

			if res.Phase == poller.PhaseCompleted {
				e.library.CompleteProcessing(videoID, res.State.ProcessedVideoPath)
			} else {
				e.library.FailProcessing(videoID)
			}
			e.sendProgress(ProgressUpdate{
				Phase: BatchWatching, Step: i + 1, Total: total,
				Message: res.Phase.String(),
				Data:    res.State,
			})
		}(i, videoID, watcher)
	}

	wg.Wait()
	e.sendProgress(ProgressUpdate{Phase: BatchDone, Step: total, Total: total, Message: "batch finished"})
	return results, nil
}

// sendProgress forwards an update without blocking the batch loop.
func (e *BatchEngine) sendProgress(update ProgressUpdate) {
	select {
	case e.updates <- update:
	default:
	}
}
