package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/clipworks/clipctl/internal/shared"
)

// UploadResult describes a freshly submitted video. The backend always
// returns the new record and job ids; the storage fields are filled in when
// the backend includes them.
type UploadResult struct {
	VideoID      int64  `json:"video_id"`
	JobID        string `json:"job_id"`
	S3URL        string `json:"s3_url"`
	Filename     string `json:"filename"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Upload submits a local video file as a multipart request. The progress
// callback, if non-nil, receives percentages from 0 to 100 as the file body
// is transmitted. Returns ErrInvalidInput for files that are not videos.
func (c *Client) Upload(ctx context.Context, path string, progress func(percent int)) (*UploadResult, error) {
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if !strings.HasPrefix(contentType, "video/") {
		return nil, fmt.Errorf("%w: %s is not a video file", shared.ErrInvalidInput, filepath.Base(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	// On error returns that never read the request body, closing the read end
	// unblocks the writer goroutine.
	defer pr.Close()

	go func() {
		part, err := writer.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}

		src := io.Reader(file)
		if progress != nil {
			src = &progressReader{r: file, total: info.Size(), report: progress}
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	var result UploadResult
	if err := c.do(ctx, http.MethodPost, "/upload", pr, writer.FormDataContentType(), &result); err != nil {
		return nil, err
	}
	if result.Filename == "" {
		result.Filename = filepath.Base(path)
	}
	if progress != nil {
		progress(100)
	}

	if c.logger != nil {
		c.logger.Info("upload accepted", "video_id", result.VideoID, "job_id", result.JobID)
	}
	return &result, nil
}

// progressReader reports transmission progress as whole percentages,
// emitting each value at most once.
type progressReader struct {
	r      io.Reader
	total  int64
	sent   int64
	last   int
	report func(percent int)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.sent += int64(n)
	if p.total > 0 {
		percent := int(p.sent * 100 / p.total)
		if percent > 99 {
			percent = 99
		}
		if percent > p.last {
			p.last = percent
			p.report(percent)
		}
	}
	return n, err
}
