package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/clipworks/clipctl/internal/shared"
)

func newTestManager(t *testing.T, handler http.HandlerFunc) (*Manager, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	manager := NewManager(ManagerOpts{
		Store:   NewMemoryStore(),
		Client:  server.Client(),
		BaseURL: server.URL,
	})
	return manager, server
}

func TestSignIn(t *testing.T) {
	t.Run("success persists credential", func(t *testing.T) {
		manager, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/auth/signin" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["email"] != "a@b.com" || body["password"] != "hunter2" {
				t.Errorf("unexpected body: %v", body)
			}
			json.NewEncoder(w).Encode(map[string]string{
				"access_token": "tok-1",
				"token_type":   "bearer",
			})
		})

		cred, err := manager.SignIn(context.Background(), "a@b.com", "hunter2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cred.AccessToken != "tok-1" {
			t.Errorf("unexpected token: %s", cred.AccessToken)
		}

		loaded, err := manager.Credential()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded.AccessToken != "tok-1" {
			t.Errorf("credential not retained: %s", loaded.AccessToken)
		}
	})

	t.Run("rejected credentials", func(t *testing.T) {
		manager, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid credentials"})
		})

		_, err := manager.SignIn(context.Background(), "a@b.com", "wrong")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if _, err := manager.Credential(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected no credential after failed sign-in, got %v", err)
		}
	})
}

func TestSignUp(t *testing.T) {
	manager, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/signup" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["first_name"] != "Ada" {
			t.Errorf("unexpected body: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "User created successfully"})
	})

	err := manager.SignUp(context.Background(), "Ada", "Lovelace", "ada@b.com", "hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Signup does not issue a credential.
	if _, err := manager.Credential(); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestInvalidate(t *testing.T) {
	store := NewMemoryStore()
	store.Save(&Credential{AccessToken: "tok-old", TokenType: "bearer"})
	manager := NewManager(ManagerOpts{Store: store, BaseURL: "http://unused"})

	cred, err := manager.Credential()
	if err != nil {
		t.Fatal(err)
	}

	manager.Invalidate(cred.AccessToken)
	if _, err := manager.Credential(); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("expected credential gone, got %v", err)
	}
	if cred, _ := store.Load(); cred != nil {
		t.Error("expected store cleared")
	}

	// A stale invalidation must not clobber a newer credential.
	store.Save(&Credential{AccessToken: "tok-new", TokenType: "bearer"})
	manager = NewManager(ManagerOpts{Store: store, BaseURL: "http://unused"})
	if _, err := manager.Credential(); err != nil {
		t.Fatal(err)
	}
	manager.Invalidate("tok-old")
	if cred, err := manager.Credential(); err != nil || cred.AccessToken != "tok-new" {
		t.Errorf("stale invalidation should be a no-op, got %v, %v", cred, err)
	}
}

func TestSignOut(t *testing.T) {
	store := NewMemoryStore()
	store.Save(&Credential{AccessToken: "tok-1"})
	manager := NewManager(ManagerOpts{Store: store})

	if err := manager.SignOut(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := manager.Credential(); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	if cred, err := store.Load(); err != nil || cred != nil {
		t.Errorf("expected empty store, got %v, %v", cred, err)
	}

	saved := &Credential{AccessToken: "tok-1", TokenType: "bearer", Email: "a@b.com"}
	if err := store.Save(saved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.AccessToken != "tok-1" || loaded.Email != "a@b.com" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if cred, _ := store.Load(); cred != nil {
		t.Error("expected cleared store")
	}
	if err := store.Clear(); err != nil {
		t.Errorf("clearing an empty store should not error: %v", err)
	}
}
