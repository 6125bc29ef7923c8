package repositories

import (
	"errors"
	"testing"

	"github.com/clipworks/clipctl/internal/models"
	"github.com/clipworks/clipctl/internal/shared"
)

func newTestRepository(t *testing.T) *VideoRepository {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatal(err)
	}
	return NewVideoRepository(db)
}

func TestVideoRepositoryCRUD(t *testing.T) {
	repo := newTestRepository(t)

	created, err := repo.Create(models.CachedVideo{
		RemoteID: 7, Name: "Intro", UploadPath: "uploads/intro.mp4", Status: "uploaded",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" || created.Sequence == 0 {
		t.Errorf("expected assigned id and sequence, got %+v", created)
	}

	t.Run("get", func(t *testing.T) {
		got, err := repo.Get(created.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Name != "Intro" || got.RemoteID != 7 {
			t.Errorf("unexpected row: %+v", got)
		}
	})

	t.Run("get by remote id", func(t *testing.T) {
		got, err := repo.GetByRemoteID(7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != created.ID {
			t.Errorf("unexpected row: %+v", got)
		}
	})

	t.Run("update", func(t *testing.T) {
		created.Name = "Renamed"
		created.ProcessedPath = "processed/intro.mp4"
		if _, err := repo.Update(created); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _ := repo.Get(created.ID)
		if got.Name != "Renamed" || got.ProcessedPath != "processed/intro.mp4" {
			t.Errorf("update not persisted: %+v", got)
		}
	})

	t.Run("delete hides the row", func(t *testing.T) {
		if err := repo.Delete(created.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := repo.Get(created.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := repo.Delete(created.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on repeat delete, got %v", err)
		}
	})
}

func TestListOrder(t *testing.T) {
	repo := newTestRepository(t)

	for i := int64(1); i <= 3; i++ {
		if _, err := repo.Create(models.CachedVideo{RemoteID: i, UploadPath: "u"}); err != nil {
			t.Fatal(err)
		}
	}

	videos, err := repo.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(videos) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(videos))
	}
	// Newest first.
	if videos[0].RemoteID != 3 || videos[2].RemoteID != 1 {
		t.Errorf("unexpected order: %v", videos)
	}
}

func TestSyncFromBackend(t *testing.T) {
	repo := newTestRepository(t)

	if err := repo.SyncFromBackend([]models.VideoRecord{
		{ID: 1, Name: "One", UploadPath: "u/1.mp4", Status: "uploaded"},
		{ID: 2, Name: "Two", UploadPath: "u/2.mp4", Status: "uploaded"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	videos, _ := repo.List()
	if len(videos) != 2 {
		t.Fatalf("expected 2 rows after first sync, got %d", len(videos))
	}

	// Second sync: record 1 renamed and processed, record 2 gone, record 3 new.
	if err := repo.SyncFromBackend([]models.VideoRecord{
		{ID: 1, Name: "One v2", UploadPath: "u/1.mp4", ProcessedPath: "p/1.mp4", Status: "completed"},
		{ID: 3, Name: "Three", UploadPath: "u/3.mp4", Status: "uploaded"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	videos, _ = repo.List()
	if len(videos) != 2 {
		t.Fatalf("expected 2 rows after second sync, got %d", len(videos))
	}

	one, err := repo.GetByRemoteID(1)
	if err != nil {
		t.Fatal(err)
	}
	if one.Name != "One v2" || one.ProcessedPath != "p/1.mp4" {
		t.Errorf("expected record 1 updated in place, got %+v", one)
	}
	if _, err := repo.GetByRemoteID(2); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected record 2 removed, got %v", err)
	}
	if _, err := repo.GetByRemoteID(3); err != nil {
		t.Errorf("expected record 3 present, got %v", err)
	}
}
