package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/clipworks/clipctl/internal/library"
	"github.com/clipworks/clipctl/internal/models"
	"github.com/clipworks/clipctl/internal/poller"
)

// stubClient satisfies SpeakerClient for model tests.
type stubClient struct {
	speakers []models.Speaker
}

func (s *stubClient) DetectSpeakers(ctx context.Context, videoID int64) ([]models.Speaker, error) {
	return s.speakers, nil
}

func (s *stubClient) JobStatus(ctx context.Context, jobID string) (models.JobState, error) {
	return models.JobState{JobID: jobID, Status: models.JobProcessing}, nil
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	lib := library.New(nil, nil)
	lib.RecordUpload(models.VideoRecord{ID: 1, Name: "Clip", UploadPath: "u/clip.mp4"})

	client := &stubClient{speakers: []models.Speaker{{ID: 0}, {ID: 1}, {ID: 2}, {ID: 3}}}
	m := NewModel(context.Background(), lib, client, poller.Options{Interval: time.Millisecond})
	m.width = 80
	m.height = 24
	return m
}

func TestLibraryViewLists(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(libraryFetchedMsg{})
	m = updated.(*Model)

	if m.view != LibraryView {
		t.Errorf("expected library view, got %d", m.view)
	}
	if got := len(m.videoList.Items()); got != 1 {
		t.Errorf("expected 1 item, got %d", got)
	}
}

func TestSpeakerSelectionCap(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(speakersFetchedMsg{speakers: []models.Speaker{{ID: 0}, {ID: 1}, {ID: 2}, {ID: 3}}})
	m = updated.(*Model)
	if m.view != SpeakerView {
		t.Fatalf("expected speaker view, got %d", m.view)
	}

	space := tea.KeyMsg{Type: tea.KeySpace}
	down := tea.KeyMsg{Type: tea.KeyDown}
	for i := 0; i < 3; i++ {
		updated, _ = m.Update(space)
		m = updated.(*Model)
		updated, _ = m.Update(down)
		m = updated.(*Model)
	}
	if m.selection.Count() != 3 {
		t.Fatalf("expected 3 selected, got %d", m.selection.Count())
	}

	// Fourth selection is rejected and surfaces as an error.
	updated, _ = m.Update(space)
	m = updated.(*Model)
	if m.selection.Count() != 3 {
		t.Errorf("selection should stay at cap, got %d", m.selection.Count())
	}
	if m.err == nil {
		t.Error("expected error shown for over-selection")
	}
}

func TestWatchDonePromotesVideo(t *testing.T) {
	m := newTestModel(t)
	m.selectedVideo = models.VideoRecord{ID: 1, UploadPath: "u/clip.mp4"}

	updated, _ := m.Update(watchDoneMsg(poller.Result{
		Phase: poller.PhaseCompleted,
		State: models.JobState{Status: models.JobCompleted, ProcessedVideoPath: "p/clip.mp4"},
	}))
	m = updated.(*Model)

	if m.view != ResultView {
		t.Errorf("expected result view, got %d", m.view)
	}
	if got := len(m.lib.Processed()); got != 1 {
		t.Errorf("expected completed video in processed list, got %d", got)
	}
}
