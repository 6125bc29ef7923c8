package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/clipworks/clipctl/internal/models"
	"github.com/clipworks/clipctl/internal/shared"
)

func TestMe(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":                1,
			"first_name":        "Ada",
			"last_name":         "Lovelace",
			"email":             "ada@clipworks.io",
			"subscription_plan": "FREE",
			"token_balance":     300,
		})
	}))

	user, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.FullName() != "Ada Lovelace" {
		t.Errorf("unexpected name: %q", user.FullName())
	}
	if user.TokenBalance != 300 {
		t.Errorf("unexpected token balance: %d", user.TokenBalance)
	}
}

func TestUpdateProfilePicture(t *testing.T) {
	t.Run("uploads an image", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut || r.URL.Path != "/users/profile-picture" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			file, header, err := r.FormFile("file")
			if err != nil {
				t.Fatalf("missing form file: %v", err)
			}
			defer file.Close()
			if header.Filename != "avatar.png" {
				t.Errorf("unexpected filename: %s", header.Filename)
			}
			json.NewEncoder(w).Encode(map[string]string{
				"profile_picture_url": "https://cdn.example.com/avatar.png",
			})
		}))

		path := filepath.Join(t.TempDir(), "avatar.png")
		if err := os.WriteFile(path, []byte("not a real png"), 0644); err != nil {
			t.Fatal(err)
		}

		url, err := client.UpdateProfilePicture(context.Background(), path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if url != "https://cdn.example.com/avatar.png" {
			t.Errorf("unexpected url: %q", url)
		}
	})

	t.Run("rejects non-image files", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should reach the server")
		}))

		_, err := client.UpdateProfilePicture(context.Background(), "notes.txt")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestTags(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]string{"promo", "interview"})
	}))

	names, err := client.Tags(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "promo" {
		t.Errorf("unexpected tags: %v", names)
	}
}

func TestCreateTask(t *testing.T) {
	t.Run("assigns an id", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var task models.Task
			json.NewDecoder(r.Body).Decode(&task)
			task.ID = 7
			json.NewEncoder(w).Encode(task)
		}))

		created, err := client.CreateTask(context.Background(), models.Task{Title: "Cut the intro"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.ID != 7 {
			t.Errorf("unexpected id: %d", created.ID)
		}
	})

	t.Run("rejects an empty title", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should reach the server")
		}))

		if _, err := client.CreateTask(context.Background(), models.Task{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
