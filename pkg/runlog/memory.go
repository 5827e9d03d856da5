package runlog

import (
	"context"
	"sync"

	"github.com/matzehuels/beamforge/pkg/errors"
)

// MemoryStore keeps run history in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*Record
	ordered []*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*Record)}
}

// Append adds a record, assigning a fresh ID when the record has none.
func (s *MemoryStore) Append(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = NewID()
	}
	cp := *rec
	s.byID[cp.ID] = &cp
	s.ordered = append(s.ordered, &cp)
	return nil
}

// Get retrieves a record by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
	}
	cp := *rec
	return &cp, nil
}

// List returns all records in append order.
func (s *MemoryStore) List(ctx context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, len(s.ordered))
	for i, rec := range s.ordered {
		cp := *rec
		out[i] = &cp
	}
	return out, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
