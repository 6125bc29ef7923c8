package shared

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	if logger == nil {
		t.Fatal("expected logger, got nil")
	}

	logger.Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected log output to contain message, got %q", buf.String())
	}
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("expected valid uuid, got %q: %v", id, err)
	}

	if GenerateID() == id {
		t.Error("expected unique ids")
	}
}

func TestMarshalJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("compact", func(t *testing.T) {
		out, err := MarshalJSON(payload{Name: "clip"}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(out) != `{"name":"clip"}` {
			t.Errorf("unexpected output: %s", out)
		}
	})

	t.Run("pretty", func(t *testing.T) {
		out, err := MarshalJSON(payload{Name: "clip"}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(out), "\n") {
			t.Errorf("expected indented output, got %s", out)
		}
	})
}
