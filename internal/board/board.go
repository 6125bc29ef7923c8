package board

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/clipworks/clipctl/internal/models"
	"github.com/clipworks/clipctl/internal/shared"
)

// MaxTagsPerTask is the largest number of tags a task may carry.
const MaxTagsPerTask = 3

// Backend is the slice of the API client the board depends on.
type Backend interface {
	Tasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, task models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, task models.Task) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	Tags(ctx context.Context) ([]string, error)
	DeleteTag(ctx context.Context, name string) error
}

// Engine holds the board state. All methods are safe for concurrent use.
type Engine struct {
	backend Backend
	logger  *log.Logger

	mu    sync.Mutex
	tasks []models.Task
	tags  []string
}

// NewEngine creates an empty board over the given backend.
func NewEngine(backend Backend, logger *log.Logger) *Engine {
	return &Engine{backend: backend, logger: logger}
}

// Refresh replaces the board state with the backend's current tasks and
// tags.
func (e *Engine) Refresh(ctx context.Context) error {
	tasks, err := e.backend.Tasks(ctx)
	if err != nil {
		return err
	}
	tags, err := e.backend.Tags(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasks = tasks
	e.tags = tags
	return nil
}

// Tasks returns a snapshot of every card, in backend order.
func (e *Engine) Tasks() []models.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.Task(nil), e.tasks...)
}

// Column returns the cards in one board column.
func (e *Engine) Column(status models.TaskStatus) []models.Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	var cards []models.Task
	for _, task := range e.tasks {
		if task.Status == status {
			cards = append(cards, task)
		}
	}
	return cards
}

// Tags returns a snapshot of every tag name.
func (e *Engine) Tags() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.tags...)
}

// Create adds a card to the board.
func (e *Engine) Create(ctx context.Context, task models.Task) (models.Task, error) {
	if !task.Status.Valid() {
		task.Status = models.StatusUnassigned
	}
	if len(task.Tags) > MaxTagsPerTask {
		return models.Task{}, fmt.Errorf("%w: at most %d tags per task", shared.ErrInvalidInput, MaxTagsPerTask)
	}

	created, err := e.backend.CreateTask(ctx, task)
	if err != nil {
		return models.Task{}, err
	}

	e.mu.Lock()
	e.tasks = append(e.tasks, created)
	e.adoptTagsLocked(created.Tags)
	e.mu.Unlock()
	return created, nil
}

// Move shifts a card to another column. The move is applied locally first so
// the UI reflects it immediately; if the backend rejects the update, the
// card snaps back to its previous column.
func (e *Engine) Move(ctx context.Context, taskID int64, to models.TaskStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown column %q", shared.ErrInvalidInput, to)
	}

	e.mu.Lock()
	i := e.indexLocked(taskID)
	if i < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: task %d", shared.ErrNotFound, taskID)
	}
	from := e.tasks[i].Status
	if from == to {
		e.mu.Unlock()
		return nil
	}
	e.tasks[i].Status = to
	moved := e.tasks[i]
	e.mu.Unlock()

	if _, err := e.backend.UpdateTask(ctx, moved); err != nil {
		e.mu.Lock()
		if j := e.indexLocked(taskID); j >= 0 {
			e.tasks[j].Status = from
		}
		e.mu.Unlock()
		if e.logger != nil {
			e.logger.Warn("move rejected, rolled back", "task_id", taskID, "error", err)
		}
		return err
	}
	return nil
}

// Update replaces a card's fields on the backend and locally.
func (e *Engine) Update(ctx context.Context, task models.Task) (models.Task, error) {
	if len(task.Tags) > MaxTagsPerTask {
		return models.Task{}, fmt.Errorf("%w: at most %d tags per task", shared.ErrInvalidInput, MaxTagsPerTask)
	}

	updated, err := e.backend.UpdateTask(ctx, task)
	if err != nil {
		return models.Task{}, err
	}

	e.mu.Lock()
	if i := e.indexLocked(task.ID); i >= 0 {
		e.tasks[i] = updated
	}
	e.adoptTagsLocked(updated.Tags)
	e.mu.Unlock()
	return updated, nil
}

// Delete removes a card from the board.
func (e *Engine) Delete(ctx context.Context, taskID int64) error {
	if err := e.backend.DeleteTask(ctx, taskID); err != nil {
		return err
	}

	e.mu.Lock()
	if i := e.indexLocked(taskID); i >= 0 {
		e.tasks = append(e.tasks[:i], e.tasks[i+1:]...)
	}
	e.mu.Unlock()
	return nil
}

// AddTag attaches a tag to a card, registering the tag if it is new.
func (e *Engine) AddTag(ctx context.Context, taskID int64, tag string) error {
	if tag == "" {
		return fmt.Errorf("%w: tag name must not be empty", shared.ErrInvalidInput)
	}

	e.mu.Lock()
	i := e.indexLocked(taskID)
	if i < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: task %d", shared.ErrNotFound, taskID)
	}
	task := e.tasks[i]
	e.mu.Unlock()

	if task.HasTag(tag) {
		return nil
	}
	if len(task.Tags) >= MaxTagsPerTask {
		return fmt.Errorf("%w: at most %d tags per task", shared.ErrInvalidInput, MaxTagsPerTask)
	}

	task.Tags = append(append([]string(nil), task.Tags...), tag)
	_, err := e.Update(ctx, task)
	return err
}

// RemoveTag detaches a tag from a card.
func (e *Engine) RemoveTag(ctx context.Context, taskID int64, tag string) error {
	e.mu.Lock()
	i := e.indexLocked(taskID)
	if i < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: task %d", shared.ErrNotFound, taskID)
	}
	task := e.tasks[i]
	e.mu.Unlock()

	var remaining []string
	for _, name := range task.Tags {
		if !strings.EqualFold(name, tag) {
			remaining = append(remaining, name)
		}
	}
	if len(remaining) == len(task.Tags) {
		return nil
	}
	task.Tags = remaining
	_, err := e.Update(ctx, task)
	return err
}

// DeleteTag removes a tag everywhere: from the registry and from every card
// that carries it.
func (e *Engine) DeleteTag(ctx context.Context, tag string) error {
	if err := e.backend.DeleteTag(ctx, tag); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.tags {
		if strings.EqualFold(e.tags[i], tag) {
			e.tags = append(e.tags[:i], e.tags[i+1:]...)
			break
		}
	}
	for i := range e.tasks {
		var remaining []string
		for _, name := range e.tasks[i].Tags {
			if !strings.EqualFold(name, tag) {
				remaining = append(remaining, name)
			}
		}
		e.tasks[i].Tags = remaining
	}
	return nil
}

func (e *Engine) indexLocked(taskID int64) int {
	for i, task := range e.tasks {
		if task.ID == taskID {
			return i
		}
	}
	return -1
}

// adoptTagsLocked registers any tag names not yet in the registry. Names
// compare case-insensitively, so a recased spelling of a known tag is not a
// new tag.
func (e *Engine) adoptTagsLocked(names []string) {
	for _, name := range names {
		known := false
		for _, existing := range e.tags {
			if strings.EqualFold(existing, name) {
				known = true
				break
			}
		}
		if !known {
			e.tags = append(e.tags, name)
		}
	}
}
