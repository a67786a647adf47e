package history

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps the log in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	opts    options
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{opts: newOptions(opts)}
}

func (s *MemoryStore) Append(ctx context.Context, rec Record) (Record, error) {
	rec, err := prepare(rec, s.opts)
	if err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return rec, nil
}

func (s *MemoryStore) ListAll(ctx context.Context, ownerID string) ([]Record, error) {
	return s.filter(func(r Record) bool { return r.OwnerID == ownerID }), nil
}

func (s *MemoryStore) ListByIntern(ctx context.Context, ownerID, internID string) ([]Record, error) {
	return s.filter(func(r Record) bool { return r.OwnerID == ownerID && r.InternID == internID }), nil
}

// filter returns matching rows newest first; rows with equal timestamps keep
// reverse insertion order.
func (s *MemoryStore) filter(match func(Record) bool) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0)
	for i := len(s.records) - 1; i >= 0; i-- {
		if match(s.records[i]) {
			out = append(out, s.records[i])
		}
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
