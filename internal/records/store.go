package records

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Store owns the canonical record set.
type Store interface {
	// List returns every record in insertion order.
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id int64) (*Record, error)
	// Create assigns a fresh id and applies the date/rating defaults.
	Create(ctx context.Context, r Record) (*Record, error)
	// Update merges the non-zero fields of patch into the stored record.
	Update(ctx context.Context, id int64, patch Record) (*Record, error)
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
}

// MemoryStore keeps records in a slice guarded by a mutex, so each call
// runs to completion before the next one touches the set.
type MemoryStore struct {
	mu      sync.Mutex
	items   []Record
	lastID  int64
	nowFunc func() time.Time
}

// NewMemoryStore returns a store preloaded with seed. Ids issued later
// continue after the highest seeded id and are never reused.
func NewMemoryStore(seed []Record) *MemoryStore {
	s := &MemoryStore{
		items:   slices.Clone(seed),
		nowFunc: time.Now,
	}
	for _, r := range seed {
		s.lastID = max(s.lastID, r.ID)
	}
	return s
}

func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items), nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("get item %d: %w", id, ErrNotFound)
	}
	r := s.items[i]
	return &r, nil
}

func (s *MemoryStore) Create(ctx context.Context, r Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	r.ID = s.lastID
	r = withCreateDefaults(r, s.nowFunc())
	s.items = append(s.items, r)
	return &r, nil
}

func (s *MemoryStore) Update(ctx context.Context, id int64, patch Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("update item %d: %w", id, ErrNotFound)
	}
	patch.ID = 0
	updated := s.items[i].Merge(patch)
	s.items[i] = updated
	return &updated, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete item %d: %w", id, ErrNotFound)
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func (s *MemoryStore) Categories(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Categories(s.items), nil
}

// indexOf must be called with mu held.
func (s *MemoryStore) indexOf(id int64) int {
	return slices.IndexFunc(s.items, func(r Record) bool { return r.ID == id })
}
