package memory

import (
	"context"
	"fmt"
	"sync"

	"streamtally/internal/core"
	"streamtally/internal/sheets"
)

var _ sheets.ActivityMirror = (*Store)(nil)

// Store is an in-process activity mirror for tests and local runs.
type Store struct {
	mu   sync.Mutex
	rows [][]any
	refs map[string]string
}

func New() *Store {
	return &Store{refs: make(map[string]string)}
}

// AppendActivity stores the row and returns a synthetic row reference.
// Appending the same activity id twice returns the first reference.
func (s *Store) AppendActivity(_ context.Context, h core.Header, a core.Activity) (string, error) {
	if err := h.Validate(); err != nil {
		return "", err
	}
	if err := a.Payload().Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ref, ok := s.refs[a.ID]; ok {
		return ref, nil
	}
	s.rows = append(s.rows, sheets.Row(h, a))
	ref := fmt.Sprintf("mem:%d", len(s.rows))
	s.refs[a.ID] = ref
	return ref, nil
}

// Rows returns a copy of the mirrored rows in append order.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}
