package board

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/clipworks/clipctl/internal/models"
	"github.com/clipworks/clipctl/internal/shared"
)

// fakeBoard is an in-memory Backend for board tests.
type fakeBoard struct {
	mu     sync.Mutex
	tasks  []models.Task
	tags   []string
	nextID int64

	updateErr error
}

func newFakeBoard(tasks []models.Task, tags []string) *fakeBoard {
	var maxID int64
	for _, task := range tasks {
		if task.ID > maxID {
			maxID = task.ID
		}
	}
	return &fakeBoard{tasks: tasks, tags: tags, nextID: maxID}
}

func (f *fakeBoard) Tasks(ctx context.Context) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Task(nil), f.tasks...), nil
}

func (f *fakeBoard) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	task.ID = f.nextID
	f.tasks = append(f.tasks, task)
	return task, nil
}

func (f *fakeBoard) UpdateTask(ctx context.Context, task models.Task) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return models.Task{}, f.updateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == task.ID {
			f.tasks[i] = task
			return task, nil
		}
	}
	return models.Task{}, shared.ErrNotFound
}

func (f *fakeBoard) DeleteTask(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (f *fakeBoard) Tags(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tags...), nil
}

func (f *fakeBoard) DeleteTag(ctx context.Context, name string) error {
	return nil
}

func newTestEngine(t *testing.T) (*Engine, *fakeBoard) {
	t.Helper()
	backend := newFakeBoard([]models.Task{
		{ID: 1, Title: "Cut trailer", Status: models.StatusTodo, Tags: []string{"edit"}},
		{ID: 2, Title: "Review captions", Status: models.StatusInProgress, Tags: []string{"edit", "review"}, DueDate: "2026-08-14"},
		{ID: 3, Title: "Publish", Status: models.StatusUnassigned},
	}, []string{"edit", "review"})

	engine := NewEngine(backend, nil)
	if err := engine.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	return engine, backend
}

func TestColumn(t *testing.T) {
	engine, _ := newTestEngine(t)

	todo := engine.Column(models.StatusTodo)
	if len(todo) != 1 || todo[0].ID != 1 {
		t.Errorf("unexpected todo column: %v", todo)
	}
	if got := engine.Column(models.StatusDone); len(got) != 0 {
		t.Errorf("expected empty done column, got %v", got)
	}
}

func TestMove(t *testing.T) {
	t.Run("applies and persists", func(t *testing.T) {
		engine, backend := newTestEngine(t)
		if err := engine.Move(context.Background(), 1, models.StatusDone); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := engine.Column(models.StatusDone); len(got) != 1 || got[0].ID != 1 {
			t.Errorf("expected task 1 in done, got %v", got)
		}
		remote, _ := backend.Tasks(context.Background())
		if remote[0].Status != models.StatusDone {
			t.Errorf("expected backend updated, got %s", remote[0].Status)
		}
	})

	t.Run("rolls back on rejection", func(t *testing.T) {
		engine, backend := newTestEngine(t)
		backend.updateErr = errors.New("boom")

		if err := engine.Move(context.Background(), 1, models.StatusDone); err == nil {
			t.Fatal("expected error")
		}
		if got := engine.Column(models.StatusTodo); len(got) != 1 || got[0].ID != 1 {
			t.Errorf("expected task 1 back in todo, got %v", got)
		}
	})

	t.Run("same column is a no-op", func(t *testing.T) {
		engine, backend := newTestEngine(t)
		backend.updateErr = errors.New("must not be called")
		if err := engine.Move(context.Background(), 1, models.StatusTodo); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("unknown column", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		err := engine.Move(context.Background(), 1, models.TaskStatus("archived"))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestTagOperations(t *testing.T) {
	t.Run("add respects the cap", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		if err := engine.AddTag(context.Background(), 2, "urgent"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := engine.AddTag(context.Background(), 2, "extra"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput at cap, got %v", err)
		}
	})

	t.Run("add is idempotent", func(t *testing.T) {
		engine, backend := newTestEngine(t)
		backend.updateErr = errors.New("must not be called")
		if err := engine.AddTag(context.Background(), 1, "edit"); err != nil {
			t.Errorf("re-adding an existing tag should be a no-op, got %v", err)
		}
	})

	t.Run("new tags join the registry", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		if err := engine.AddTag(context.Background(), 3, "launch"); err != nil {
			t.Fatal(err)
		}
		found := false
		for _, tag := range engine.Tags() {
			if tag == "launch" {
				found = true
			}
		}
		if !found {
			t.Error("expected launch in tag registry")
		}
	})

	t.Run("delete cascades to every card", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		if err := engine.DeleteTag(context.Background(), "edit"); err != nil {
			t.Fatal(err)
		}
		for _, task := range engine.Tasks() {
			if task.HasTag("edit") {
				t.Errorf("task %d still carries deleted tag", task.ID)
			}
		}
		for _, tag := range engine.Tags() {
			if tag == "edit" {
				t.Error("tag registry still lists deleted tag")
			}
		}
	})

	t.Run("remove single tag", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		if err := engine.RemoveTag(context.Background(), 2, "review"); err != nil {
			t.Fatal(err)
		}
		for _, task := range engine.Tasks() {
			if task.ID == 2 && task.HasTag("review") {
				t.Error("tag should be removed from task 2")
			}
		}
	})

	t.Run("names compare case-insensitively", func(t *testing.T) {
		engine, backend := newTestEngine(t)

		// Re-adding a recased spelling must not duplicate the tag.
		backend.updateErr = errors.New("must not be called")
		if err := engine.AddTag(context.Background(), 1, "Edit"); err != nil {
			t.Errorf("recased existing tag should be a no-op, got %v", err)
		}
		backend.updateErr = nil

		// Deleting by another casing still cascades to every card and the
		// registry.
		if err := engine.DeleteTag(context.Background(), "EDIT"); err != nil {
			t.Fatal(err)
		}
		for _, task := range engine.Tasks() {
			if task.HasTag("edit") {
				t.Errorf("task %d still carries deleted tag", task.ID)
			}
		}
		for _, tag := range engine.Tags() {
			if strings.EqualFold(tag, "edit") {
				t.Error("tag registry still lists deleted tag")
			}
		}

		// Removal from a single card matches regardless of casing.
		if err := engine.RemoveTag(context.Background(), 2, "REVIEW"); err != nil {
			t.Fatal(err)
		}
		for _, task := range engine.Tasks() {
			if task.ID == 2 && task.HasTag("review") {
				t.Error("recased removal should strip the tag from task 2")
			}
		}
	})
}

func TestCreate(t *testing.T) {
	engine, _ := newTestEngine(t)

	created, err := engine.Create(context.Background(), models.Task{Title: "Ship it"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected assigned id")
	}
	if created.Status != models.StatusUnassigned {
		t.Errorf("expected default column, got %s", created.Status)
	}

	_, err = engine.Create(context.Background(), models.Task{
		Title: "Overloaded", Tags: []string{"a", "b", "c", "d"},
	})
	if !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for too many tags, got %v", err)
	}
}

func TestColorFor(t *testing.T) {
	if ColorFor("edit") != ColorFor("edit") {
		t.Error("color must be stable for the same tag")
	}
	if ColorFor("Edit") != ColorFor("edit") {
		t.Error("recased spellings of a tag must share a color")
	}

	// Every color must come from the palette.
	found := false
	got := ColorFor("review")
	for _, color := range TagPalette {
		if color == got {
			found = true
		}
	}
	if !found {
		t.Errorf("color %v not in palette", got)
	}
}

func TestMonth(t *testing.T) {
	engine, _ := newTestEngine(t)
	grid := engine.Month(2026, time.August)

	if grid.Weeks[0][0].Date.Weekday() != time.Sunday {
		t.Errorf("grid should start on Sunday, got %s", grid.Weeks[0][0].Date.Weekday())
	}

	var placed *Day
	for w := range grid.Weeks {
		for d := range grid.Weeks[w] {
			cell := grid.Weeks[w][d]
			if cell.Date.Format(DueDateLayout) == "2026-08-14" {
				placed = &cell
			}
		}
	}
	if placed == nil {
		t.Fatal("2026-08-14 missing from grid")
	}
	if !placed.InMonth {
		t.Error("2026-08-14 should be in month")
	}
	if len(placed.Tasks) != 1 || placed.Tasks[0].ID != 2 {
		t.Errorf("expected task 2 on its due date, got %v", placed.Tasks)
	}
}
