package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/clipworks/clipctl/internal/session"
	"github.com/clipworks/clipctl/internal/shared"
)

// Client talks to the clip backend on behalf of the signed-in user.
type Client struct {
	http    *http.Client
	baseURL string
	session *session.Manager
	limiter *rate.Limiter
	logger  *log.Logger
}

// ClientOpts configures a backend client.
type ClientOpts struct {
	HTTP    *http.Client
	BaseURL string
	Session *session.Manager
	// RateLimit is the maximum request rate in requests per second.
	// Zero disables throttling.
	RateLimit float64
	Logger    *log.Logger
}

// NewClient creates a backend client. A nil HTTP client defaults to one with
// a 60 second timeout, long enough for large multipart uploads to finish.
func NewClient(opts ClientOpts) *Client {
	httpClient := opts.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &Client{
		http:    httpClient,
		baseURL: opts.BaseURL,
		session: opts.Session,
		limiter: limiter,
		logger:  opts.Logger,
	}
}

// do executes an authenticated request and decodes a JSON response into out.
// The active credential is attached as a bearer token; a missing credential
// fails before any network traffic. On a 401 the credential is invalidated
// and the call returns ErrNotAuthenticated without retrying.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	cred, err := c.session.Credential()
	if err != nil {
		return err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Invalidate(cred.AccessToken)
		return shared.ErrNotAuthenticated
	}

	if resp.StatusCode >= 400 {
		return c.errorFor(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// errorFor maps a non-401 error response onto the shared error taxonomy,
// carrying the backend's detail message when one is present.
func (c *Client) errorFor(resp *http.Response) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	detail := payload.Detail
	if detail == "" {
		detail = fmt.Sprintf("status %d", resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrNotFound, detail)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, detail)
	default:
		return fmt.Errorf("%w: %s", shared.ErrRejected, detail)
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(payload), "application/json", out)
}
