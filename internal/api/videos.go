package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/clipworks/clipctl/internal/models"
	"github.com/clipworks/clipctl/internal/shared"
)

// Videos fetches the caller's full video collection.
func (c *Client) Videos(ctx context.Context) ([]models.VideoRecord, error) {
	var records []models.VideoRecord
	if err := c.getJSON(ctx, "/videos/", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Rename changes the display name of a video record.
func (c *Client) Rename(ctx context.Context, videoID int64, name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", shared.ErrInvalidInput)
	}
	body := struct {
		Name string `json:"name"`
	}{Name: name}
	path := fmt.Sprintf("/videos/%d/rename", videoID)
	return c.sendJSON(ctx, http.MethodPatch, path, body, nil)
}

// Delete removes one or both stored renditions of a video record.
func (c *Client) Delete(ctx context.Context, videoID int64, part models.Part) error {
	if !part.Valid() {
		return fmt.Errorf("%w: unknown part %q", shared.ErrInvalidInput, part)
	}
	path := fmt.Sprintf("/videos/%d?part=%s", videoID, url.QueryEscape(string(part)))
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}

// DownloadURL resolves a short-lived download link for the requested
// rendition of a video.
func (c *Client) DownloadURL(ctx context.Context, videoID int64, part models.Part) (string, error) {
	if part != models.PartUpload && part != models.PartProcessed {
		return "", fmt.Errorf("%w: downloads target a single part, got %q", shared.ErrInvalidInput, part)
	}

	var resp struct {
		DownloadURL string `json:"download_url"`
	}
	path := fmt.Sprintf("/videos/%d/download?part=%s", videoID, url.QueryEscape(string(part)))
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return "", err
	}
	return resp.DownloadURL, nil
}

// ProcessedVideoURL resolves a playback link for a video's processed
// rendition.
func (c *Client) ProcessedVideoURL(ctx context.Context, videoID int64) (string, error) {
	var resp struct {
		ProcessedVideoURL string `json:"processed_video_url"`
	}
	path := fmt.Sprintf("/processed_video/%d", videoID)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return "", err
	}
	return resp.ProcessedVideoURL, nil
}
