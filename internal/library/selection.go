package library

import (
	"fmt"
	"sort"
	"sync"

	"github.com/clipworks/clipctl/internal/shared"
)

// MaxSelections caps how many items one multi-select operation may submit:
// speakers picked for a processing request, or videos in a batch run.
const MaxSelections = 3

// Selection tracks which detected speakers the user has picked. Toggling a
// selected speaker deselects it; selecting beyond the cap is rejected.
type Selection struct {
	mu     sync.Mutex
	picked map[int]bool
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{picked: make(map[int]bool)}
}

// Toggle flips the selection state of a speaker. Returns the new state, or
// an error when selecting would exceed the cap.
func (s *Selection) Toggle(speakerID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.picked[speakerID] {
		delete(s.picked, speakerID)
		return false, nil
	}
	if len(s.picked) >= MaxSelections {
		return false, fmt.Errorf("%w: at most %d speakers may be selected", shared.ErrInvalidInput, MaxSelections)
	}
	s.picked[speakerID] = true
	return true, nil
}

// Contains reports whether a speaker is selected.
func (s *Selection) Contains(speakerID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.picked[speakerID]
}

// Count returns the number of selected speakers.
func (s *Selection) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.picked)
}

// IDs returns the selected speaker ids in ascending order.
func (s *Selection) IDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.picked))
	for id := range s.picked {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Clear deselects everything.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picked = make(map[int]bool)
}
