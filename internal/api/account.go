package api

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/clipworks/clipctl/internal/models"
	"github.com/clipworks/clipctl/internal/shared"
)

// Me fetches the signed-in user's profile.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, "/users/me", &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UpdateProfilePicture uploads a new avatar image and returns the URL the
// backend assigned to it.
func (c *Client) UpdateProfilePicture(ctx context.Context, path string) (string, error) {
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: %s is not an image file", shared.ErrInvalidInput, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}

	var resp struct {
		ProfilePictureURL string `json:"profile_picture_url"`
	}
	if err := c.do(ctx, http.MethodPut, "/users/profile-picture", &body, writer.FormDataContentType(), &resp); err != nil {
		return "", err
	}
	return resp.ProfilePictureURL, nil
}

// Tags lists every tag name in use on the planning board.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.getJSON(ctx, "/tags", &names); err != nil {
		return nil, err
	}
	return names, nil
}

// DeleteTag removes a tag. The backend strips the tag from every task that
// carries it.
func (c *Client) DeleteTag(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("%w: tag name must not be empty", shared.ErrInvalidInput)
	}
	return c.do(ctx, http.MethodDelete, "/tags/"+url.PathEscape(name), nil, "", nil)
}

// Tasks lists every card on the planning board.
func (c *Client) Tasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.getJSON(ctx, "/tasks", &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask adds a card to the planning board and returns it with its
// assigned id.
func (c *Client) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	if task.Title == "" {
		return models.Task{}, fmt.Errorf("%w: task title must not be empty", shared.ErrInvalidInput)
	}
	var created models.Task
	if err := c.sendJSON(ctx, http.MethodPost, "/tasks", task, &created); err != nil {
		return models.Task{}, err
	}
	return created, nil
}

// UpdateTask replaces a card's fields.
func (c *Client) UpdateTask(ctx context.Context, task models.Task) (models.Task, error) {
	var updated models.Task
	path := fmt.Sprintf("/tasks/%d", task.ID)
	if err := c.sendJSON(ctx, http.MethodPut, path, task, &updated); err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

// DeleteTask removes a card from the planning board.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, "", nil)
}
