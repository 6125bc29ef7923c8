package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/clipworks/clipctl/internal/models"
	"github.com/clipworks/clipctl/internal/shared"
)

// MaxSelectedSpeakers is the largest number of speakers a processing request
// may target.
const MaxSelectedSpeakers = 3

// DetectSpeakers asks the backend to identify speakers in an uploaded video.
func (c *Client) DetectSpeakers(ctx context.Context, videoID int64) ([]models.Speaker, error) {
	var resp struct {
		Speakers []models.Speaker `json:"speakers"`
	}
	path := fmt.Sprintf("/detect_speakers/%d", videoID)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Speakers, nil
}

// Process starts speaker-framed processing of an uploaded video and returns
// the job id to watch.
func (c *Client) Process(ctx context.Context, videoID int64, selectedSpeakers []int) (string, error) {
	if len(selectedSpeakers) == 0 {
		return "", fmt.Errorf("%w: at least one speaker must be selected", shared.ErrInvalidInput)
	}
	if len(selectedSpeakers) > MaxSelectedSpeakers {
		return "", fmt.Errorf("%w: at most %d speakers may be selected", shared.ErrInvalidInput, MaxSelectedSpeakers)
	}

	body := struct {
		VideoID          int64 `json:"video_id"`
		SelectedSpeakers []int `json:"selected_speakers"`
	}{VideoID: videoID, SelectedSpeakers: selectedSpeakers}

	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/process_video", body, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}

// ProcessSimple starts basic processing of an uploaded video, optionally with
// automatic captions, and returns the job id to watch.
func (c *Client) ProcessSimple(ctx context.Context, videoID int64, autoCaptions bool) (string, error) {
	body := struct {
		VideoID      int64 `json:"video_id"`
		AutoCaptions bool  `json:"auto_captions"`
	}{VideoID: videoID, AutoCaptions: autoCaptions}

	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/process_video_simple", body, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}

// JobStatus fetches the current state of a processing job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (models.JobState, error) {
	var state models.JobState
	path := "/status/" + url.PathEscape(jobID)
	if err := c.getJSON(ctx, path, &state); err != nil {
		return models.JobState{}, err
	}
	if state.JobID == "" {
		state.JobID = jobID
	}
	return state, nil
}
