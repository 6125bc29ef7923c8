package library

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/clipworks/clipctl/internal/models"
	"github.com/clipworks/clipctl/internal/shared"
)

// Backend is the slice of the API client the library depends on.
type Backend interface {
	Videos(ctx context.Context) ([]models.VideoRecord, error)
	Rename(ctx context.Context, videoID int64, name string) error
	Delete(ctx context.Context, videoID int64, part models.Part) error
	DownloadURL(ctx context.Context, videoID int64, part models.Part) (string, error)
	Process(ctx context.Context, videoID int64, selectedSpeakers []int) (string, error)
	ProcessSimple(ctx context.Context, videoID int64, autoCaptions bool) (string, error)
	JobStatus(ctx context.Context, jobID string) (models.JobState, error)
}

// Library is the collection view. A record holding its uploaded rendition
// appears in the uploaded list; a record holding a processed rendition
// appears in the processed list; a record holding both appears in both. All
// methods are safe for concurrent use.
type Library struct {
	backend Backend
	logger  *log.Logger

	mu        sync.Mutex
	uploaded  []models.VideoRecord
	processed []models.VideoRecord
	jobs      map[int64]string // video id -> active job id
}

// New creates an empty library over the given backend.
func New(backend Backend, logger *log.Logger) *Library {
	return &Library{
		backend: backend,
		logger:  logger,
		jobs:    make(map[int64]string),
	}
}

// FetchAll replaces the library contents with the backend's current
// collection.
func (l *Library) FetchAll(ctx context.Context) error {
	records, err := l.backend.Videos(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.uploaded = l.uploaded[:0]
	l.processed = l.processed[:0]
	for _, record := range records {
		if record.HasUpload() {
			l.uploaded = append(l.uploaded, record)
		}
		if record.HasProcessed() {
			l.processed = append(l.processed, record)
		}
	}
	return nil
}

// Uploaded returns a snapshot of the uploaded list.
func (l *Library) Uploaded() []models.VideoRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.VideoRecord(nil), l.uploaded...)
}

// Processed returns a snapshot of the processed list.
func (l *Library) Processed() []models.VideoRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.VideoRecord(nil), l.processed...)
}

// Find returns the record with the given id from either list.
func (l *Library) Find(videoID int64) (models.VideoRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := indexOf(l.uploaded, videoID); i >= 0 {
		return l.uploaded[i], true
	}
	if i := indexOf(l.processed, videoID); i >= 0 {
		return l.processed[i], true
	}
	return models.VideoRecord{}, false
}

// RecordUpload prepends a freshly uploaded record to the uploaded list so the
// newest upload appears first.
func (l *Library) RecordUpload(record models.VideoRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.uploaded = append([]models.VideoRecord{record}, l.uploaded...)
}

// RequestProcessing submits a speaker-framed processing job for an uploaded
// video. A video carries at most one active job; submitting while a job is
// already running is rejected.
func (l *Library) RequestProcessing(ctx context.Context, videoID int64, selectedSpeakers []int) (string, error) {
	if err := l.claimJobSlot(videoID); err != nil {
		return "", err
	}

	jobID, err := l.backend.Process(ctx, videoID, selectedSpeakers)
	if err != nil {
		l.releaseJobSlot(videoID)
		return "", err
	}
	l.attachJob(videoID, jobID)
	return jobID, nil
}

// RequestSimpleProcessing submits a basic processing job for an uploaded
// video, optionally with automatic captions.
func (l *Library) RequestSimpleProcessing(ctx context.Context, videoID int64, autoCaptions bool) (string, error) {
	if err := l.claimJobSlot(videoID); err != nil {
		return "", err
	}

	jobID, err := l.backend.ProcessSimple(ctx, videoID, autoCaptions)
	if err != nil {
		l.releaseJobSlot(videoID)
		return "", err
	}
	l.attachJob(videoID, jobID)
	return jobID, nil
}

// ActiveJob returns the job currently attached to a video.
func (l *Library) ActiveJob(videoID int64) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	jobID, ok := l.jobs[videoID]
	return jobID, ok
}

// CompleteProcessing records a finished job's artifact on the video and
// promotes the record into the processed list. Completing a video that is
// already processed, or whose job was already recorded, is a no-op.
func (l *Library) CompleteProcessing(videoID int64, processedPath string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.jobs, videoID)

	if i := indexOf(l.uploaded, videoID); i >= 0 {
		l.uploaded[i].ProcessedPath = processedPath
		l.uploaded[i].Status = models.JobCompleted
		if indexOf(l.processed, videoID) < 0 {
			l.processed = append([]models.VideoRecord{l.uploaded[i]}, l.processed...)
		}
		return
	}

	if i := indexOf(l.processed, videoID); i >= 0 {
		l.processed[i].ProcessedPath = processedPath
		l.processed[i].Status = models.JobCompleted
	}
}

// FailProcessing detaches a failed or abandoned job from its video so a new
// job can be submitted.
func (l *Library) FailProcessing(videoID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.jobs, videoID)
}

// Rename changes a record's display name on the backend and in both lists.
func (l *Library) Rename(ctx context.Context, videoID int64, name string) error {
	if err := l.backend.Rename(ctx, videoID, name); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if i := indexOf(l.uploaded, videoID); i >= 0 {
		l.uploaded[i].Name = name
	}
	if i := indexOf(l.processed, videoID); i >= 0 {
		l.processed[i].Name = name
	}
	return nil
}

// Delete removes a rendition of a video. When the record holds both
// renditions and only one is targeted, the record survives with the other
// rendition; otherwise the whole record disappears from both lists.
func (l *Library) Delete(ctx context.Context, videoID int64, part models.Part) error {
	if !part.Valid() {
		return fmt.Errorf("%w: unknown part %q", shared.ErrInvalidInput, part)
	}

	record, found := l.Find(videoID)
	if !found {
		return fmt.Errorf("%w: video %d", shared.ErrNotFound, videoID)
	}

	if err := l.backend.Delete(ctx, videoID, part); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	hasBoth := record.HasUpload() && record.HasProcessed()
	switch {
	case part == models.PartBoth || !hasBoth:
		l.uploaded = removeAt(l.uploaded, indexOf(l.uploaded, videoID))
		l.processed = removeAt(l.processed, indexOf(l.processed, videoID))
		delete(l.jobs, videoID)
	case part == models.PartUpload:
		l.uploaded = removeAt(l.uploaded, indexOf(l.uploaded, videoID))
		if i := indexOf(l.processed, videoID); i >= 0 {
			l.processed[i].UploadPath = ""
		}
	case part == models.PartProcessed:
		l.processed = removeAt(l.processed, indexOf(l.processed, videoID))
		if i := indexOf(l.uploaded, videoID); i >= 0 {
			l.uploaded[i].ProcessedPath = ""
		}
	}

	if l.logger != nil {
		l.logger.Info("deleted video part", "video_id", videoID, "part", part)
	}
	return nil
}

// DownloadURL resolves a download link for one rendition of a video.
func (l *Library) DownloadURL(ctx context.Context, videoID int64, part models.Part) (string, error) {
	return l.backend.DownloadURL(ctx, videoID, part)
}

// claimJobSlot reserves the video's job slot before the submit request so
// two concurrent submits cannot both go through.
func (l *Library) claimJobSlot(videoID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if jobID, ok := l.jobs[videoID]; ok {
		return fmt.Errorf("%w: video %d already has job %s", shared.ErrRejected, videoID, jobID)
	}
	l.jobs[videoID] = ""
	return nil
}

func (l *Library) releaseJobSlot(videoID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if jobID, ok := l.jobs[videoID]; ok && jobID == "" {
		delete(l.jobs, videoID)
	}
}

func (l *Library) attachJob(videoID int64, jobID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jobs[videoID] = jobID
}

func indexOf(records []models.VideoRecord, videoID int64) int {
	for i, record := range records {
		if record.ID == videoID {
			return i
		}
	}
	return -1
}

func removeAt(records []models.VideoRecord, i int) []models.VideoRecord {
	if i < 0 {
		return records
	}
	return append(records[:i], records[i+1:]...)
}
