package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clipworks/clipctl/internal/models"
)

// statusFunc adapts a function to the StatusClient interface.
type statusFunc func(ctx context.Context, jobID string) (models.JobState, error)

func (f statusFunc) JobStatus(ctx context.Context, jobID string) (models.JobState, error) {
	return f(ctx, jobID)
}

// scripted returns a client that replays the given responses in order,
// repeating the last one forever.
func scripted(states []models.JobState, errs []error) StatusClient {
	var calls int64
	return statusFunc(func(ctx context.Context, jobID string) (models.JobState, error) {
		i := int(atomic.AddInt64(&calls, 1)) - 1
		if i >= len(states) {
			i = len(states) - 1
		}
		var err error
		if i < len(errs) {
			err = errs[i]
		}
		return states[i], err
	})
}

func waitResult(t *testing.T, w *Watcher) Result {
	t.Helper()
	select {
	case res := <-w.Result():
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for result")
		return Result{}
	}
}

func TestWatcherCompletes(t *testing.T) {
	client := scripted([]models.JobState{
		{JobID: "j", Status: models.JobQueued},
		{JobID: "j", Status: models.JobProcessing, Progress: 50},
		{JobID: "j", Status: models.JobCompleted, Progress: 100, ProcessedVideoPath: "processed/out.mp4"},
	}, nil)

	w := NewWatcher(client, "j", Options{Interval: time.Millisecond})
	w.Start(context.Background())

	res := waitResult(t, w)
	if res.Phase != PhaseCompleted {
		t.Errorf("expected completed, got %s", res.Phase)
	}
	if res.State.ProcessedVideoPath != "processed/out.mp4" {
		t.Errorf("unexpected state: %+v", res.State)
	}
	if w.Phase() != PhaseCompleted {
		t.Errorf("phase accessor disagrees: %s", w.Phase())
	}

	// Exactly one result, then a closed channel.
	if _, ok := <-w.Result(); ok {
		t.Error("expected result channel closed after delivery")
	}
}

func TestWatcherFails(t *testing.T) {
	client := scripted([]models.JobState{
		{JobID: "j", Status: models.JobProcessing},
		{JobID: "j", Status: models.JobFailed, Error: "ffmpeg exited"},
	}, nil)

	w := NewWatcher(client, "j", Options{Interval: time.Millisecond})
	w.Start(context.Background())

	res := waitResult(t, w)
	if res.Phase != PhaseFailed {
		t.Errorf("expected failed, got %s", res.Phase)
	}
	if res.State.Error != "ffmpeg exited" {
		t.Errorf("unexpected state: %+v", res.State)
	}
}

func TestWatcherWaitsForProcessedPath(t *testing.T) {
	// A completed status without the artifact path is not terminal yet.
	client := scripted([]models.JobState{
		{JobID: "j", Status: models.JobCompleted},
		{JobID: "j", Status: models.JobCompleted},
		{JobID: "j", Status: models.JobCompleted, ProcessedVideoPath: "processed/out.mp4"},
	}, nil)

	w := NewWatcher(client, "j", Options{Interval: time.Millisecond})
	w.Start(context.Background())

	res := waitResult(t, w)
	if res.Phase != PhaseCompleted {
		t.Errorf("expected completed, got %s", res.Phase)
	}
	if res.State.ProcessedVideoPath == "" {
		t.Error("expected processed path in terminal state")
	}
}

func TestWatcherAbandonsAfterErrorBound(t *testing.T) {
	var calls int64
	client := statusFunc(func(ctx context.Context, jobID string) (models.JobState, error) {
		atomic.AddInt64(&calls, 1)
		return models.JobState{}, errors.New("connection refused")
	})

	w := NewWatcher(client, "j", Options{Interval: time.Millisecond, MaxErrors: 5})
	w.Start(context.Background())

	res := waitResult(t, w)
	if res.Phase != PhaseAbandoned {
		t.Errorf("expected abandoned, got %s", res.Phase)
	}
	if res.Err == nil {
		t.Error("expected error in abandoned result")
	}
	if got := atomic.LoadInt64(&calls); got != 5 {
		t.Errorf("expected exactly 5 queries, got %d", got)
	}
}

func TestWatcherErrorCounterResets(t *testing.T) {
	// Intermittent failures below the bound never abandon the watch.
	var calls int64
	client := statusFunc(func(ctx context.Context, jobID string) (models.JobState, error) {
		n := atomic.AddInt64(&calls, 1)
		if n%2 == 1 && n < 7 {
			return models.JobState{}, errors.New("flaky")
		}
		if n >= 7 {
			return models.JobState{JobID: "j", Status: models.JobCompleted, ProcessedVideoPath: "p"}, nil
		}
		return models.JobState{JobID: "j", Status: models.JobProcessing}, nil
	})

	w := NewWatcher(client, "j", Options{Interval: time.Millisecond, MaxErrors: 2})
	w.Start(context.Background())

	res := waitResult(t, w)
	if res.Phase != PhaseCompleted {
		t.Errorf("expected completed despite intermittent errors, got %s", res.Phase)
	}
}

func TestWatcherCancel(t *testing.T) {
	client := scripted([]models.JobState{
		{JobID: "j", Status: models.JobProcessing, Progress: 10},
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	w := NewWatcher(client, "j", Options{Interval: time.Hour})
	w.Start(ctx)

	// Let the immediate first query land, then cancel.
	select {
	case <-w.Updates():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first update")
	}
	cancel()

	res := waitResult(t, w)
	if res.Phase != PhaseAbandoned {
		t.Errorf("expected abandoned on cancel, got %s", res.Phase)
	}
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", res.Err)
	}
	if res.State.Progress != 10 {
		t.Errorf("expected last observed state, got %+v", res.State)
	}
}

func TestWatcherUpdatesDoNotBlock(t *testing.T) {
	states := make([]models.JobState, 20)
	for i := range states {
		states[i] = models.JobState{JobID: "j", Status: models.JobProcessing, Progress: i * 5}
	}
	states = append(states, models.JobState{JobID: "j", Status: models.JobCompleted, Progress: 100, ProcessedVideoPath: "p"})

	w := NewWatcher(scripted(states, nil), "j", Options{Interval: time.Microsecond})
	w.Start(context.Background())

	// Nobody drains Updates; the watch must still terminate.
	res := waitResult(t, w)
	if res.Phase != PhaseCompleted {
		t.Errorf("expected completed, got %s", res.Phase)
	}
}
