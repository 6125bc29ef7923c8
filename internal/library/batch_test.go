package library

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clipworks/clipctl/internal/models"
	"github.com/clipworks/clipctl/internal/poller"
	"github.com/clipworks/clipctl/internal/shared"
)

func TestBatchRun(t *testing.T) {
	backend := newFakeBackend(
		models.VideoRecord{ID: 1, UploadPath: "u/1.mp4"},
		models.VideoRecord{ID: 2, UploadPath: "u/2.mp4"},
	)
	lib := New(backend, nil)
	if err := lib.FetchAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	engine := NewBatchEngine(lib, 0, poller.Options{Interval: time.Millisecond}, nil)

	done := make(chan []BatchResult, 1)
	go func() {
		results, err := engine.Run(context.Background(), []int64{1, 2}, true)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		done <- results
	}()

	// Drain updates until the engine closes the channel.
	var sawDone bool
	for update := range engine.Updates() {
		if update.Phase == BatchDone {
			sawDone = true
		}
	}
	if !sawDone {
		t.Error("expected a BatchDone update")
	}

	results := <-done
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Err != nil {
			t.Errorf("video %d: unexpected error %v", res.VideoID, res.Err)
		}
		if res.Phase != poller.PhaseCompleted {
			t.Errorf("video %d: expected completed, got %s", res.VideoID, res.Phase)
		}
	}

	// Completed jobs must land in the processed list with their slots freed.
	if got := len(lib.Processed()); got != 2 {
		t.Errorf("expected 2 processed records, got %d", got)
	}
	for _, id := range []int64{1, 2} {
		if _, ok := lib.ActiveJob(id); ok {
			t.Errorf("video %d: job slot should be freed", id)
		}
	}
}

func TestBatchSubmitFailureDoesNotStopBatch(t *testing.T) {
	backend := newFakeBackend(models.VideoRecord{ID: 1, UploadPath: "u/1.mp4"})
	lib := New(backend, nil)
	if err := lib.FetchAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Video 1 gets a job attached first so the batch submit for it fails.
	if _, err := lib.RequestSimpleProcessing(context.Background(), 1, false); err != nil {
		t.Fatal(err)
	}
	lib.RecordUpload(models.VideoRecord{ID: 2, UploadPath: "u/2.mp4"})

	engine := NewBatchEngine(lib, 0, poller.Options{Interval: time.Millisecond}, nil)
	go func() {
		for range engine.Updates() {
		}
	}()

	results, err := engine.Run(context.Background(), []int64{1, 2}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Err == nil {
		t.Error("expected submit failure for video 1")
	}
	if results[1].Err != nil || results[1].Phase != poller.PhaseCompleted {
		t.Errorf("expected video 2 to complete, got %+v", results[1])
	}
}

func TestBatchRejectsOversizedSelection(t *testing.T) {
	backend := newFakeBackend(
		models.VideoRecord{ID: 1, UploadPath: "u/1.mp4"},
		models.VideoRecord{ID: 2, UploadPath: "u/2.mp4"},
		models.VideoRecord{ID: 3, UploadPath: "u/3.mp4"},
		models.VideoRecord{ID: 4, UploadPath: "u/4.mp4"},
	)
	lib := New(backend, nil)
	if err := lib.FetchAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	engine := NewBatchEngine(lib, 0, poller.Options{Interval: time.Millisecond}, nil)

	_, err := engine.Run(context.Background(), []int64{1, 2, 3, 4}, false)
	if !errors.Is(err, shared.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// Nothing may have been submitted.
	for _, id := range []int64{1, 2, 3, 4} {
		if _, ok := lib.ActiveJob(id); ok {
			t.Errorf("video %d: no job should have been registered", id)
		}
	}
	// The updates channel still closes so consumers do not hang.
	if _, open := <-engine.Updates(); open {
		t.Error("expected updates channel to be closed without updates")
	}
}
