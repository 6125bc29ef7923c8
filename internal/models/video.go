package models

import (
	"fmt"
	"strings"
)

// Part identifies which stored rendition of a video an operation targets.
type Part string

const (
	PartUpload    Part = "upload"
	PartProcessed Part = "processed"
	PartBoth      Part = "both"
)

// Valid reports whether p is one of the recognized part selectors.
func (p Part) Valid() bool {
	switch p {
	case PartUpload, PartProcessed, PartBoth:
		return true
	}
	return false
}

// VideoRecord is a video as reported by the backend. A record may hold an
// uploaded rendition, a processed rendition, or both.
type VideoRecord struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	UploadPath    string `json:"upload_path"`
	ProcessedPath string `json:"processed_path"`
	ThumbnailURL  string `json:"thumbnail_url"`
	Status        string `json:"status"`
}

// HasUpload reports whether the record still holds its uploaded rendition.
func (v VideoRecord) HasUpload() bool {
	return v.UploadPath != ""
}

// HasProcessed reports whether the record holds a processed rendition.
func (v VideoRecord) HasProcessed() bool {
	return v.ProcessedPath != ""
}

// DisplayName returns a human-readable name for the record. Falls back to
// the final segment of the upload path, then to a synthetic name derived
// from the record id.
func (v VideoRecord) DisplayName() string {
	if v.Name != "" {
		return v.Name
	}
	if v.UploadPath != "" {
		segments := strings.Split(strings.TrimRight(v.UploadPath, "/"), "/")
		if last := segments[len(segments)-1]; last != "" {
			return last
		}
	}
	return fmt.Sprintf("Video_%d", v.ID)
}

// Speaker is a face detected in an uploaded video, identified by the backend
// and offered to the user for framing selection.
type Speaker struct {
	ID            int    `json:"id"`
	ThumbnailPath string `json:"thumbnail_path"`
}

// JobState is a snapshot of a processing job as reported by the backend.
type JobState struct {
	JobID              string `json:"job_id"`
	JobType            string `json:"job_type"`
	Status             string `json:"status"`
	Progress           int    `json:"progress"`
	ProcessedVideoPath string `json:"processed_video_path"`
	Error              string `json:"error,omitempty"`
}

// Job status values reported by the backend.
const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

// IsTerminal reports whether the job has reached a final status. A completed
// job without a processed path is not terminal; the artifact is still being
// finalized.
func (j JobState) IsTerminal() bool {
	switch j.Status {
	case JobCompleted:
		return j.ProcessedVideoPath != ""
	case JobFailed:
		return true
	}
	return false
}
