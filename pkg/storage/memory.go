package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in a map. Records are copied on the way in and
// out so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record), now: time.Now}
}

func (s *MemoryStore) Save(ctx context.Context, r *Record) error {
	if err := prepare(r, s.now()); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.ID] = *r
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	return &r, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sortRecords(out)
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return notFound(id)
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
