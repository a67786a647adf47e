package intern

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	opts    options
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		opts:    newOptions(opts),
	}
}

func (s *MemoryStore) List(ctx context.Context, ownerID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0)
	for _, r := range s.records {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID > b.ID {
			return -1
		}
		if a.ID < b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, ownerID, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok || r.OwnerID != ownerID {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) Lookup(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) Create(ctx context.Context, rec Record) (Record, error) {
	rec, err := prepareCreate(rec, s.opts)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; ok {
		return Record{}, ErrConflict
	}
	if s.emailTaken(rec) {
		return Record{}, ErrConflict
	}
	s.records[rec.ID] = rec
	return rec, nil
}

func (s *MemoryStore) Update(ctx context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[rec.ID]
	if !ok || existing.OwnerID != rec.OwnerID {
		return Record{}, ErrNotFound
	}
	rec, err := prepareUpdate(rec, existing, s.opts)
	if err != nil {
		return Record{}, err
	}
	if s.emailTaken(rec) {
		return Record{}, ErrConflict
	}
	s.records[rec.ID] = rec
	return rec, nil
}

func (s *MemoryStore) Delete(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok || r.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// emailTaken must be called with mu held.
func (s *MemoryStore) emailTaken(rec Record) bool {
	if rec.Email == "" {
		return false
	}
	for id, r := range s.records {
		if id != rec.ID && r.OwnerID == rec.OwnerID && r.Email == rec.Email {
			return true
		}
	}
	return false
}
