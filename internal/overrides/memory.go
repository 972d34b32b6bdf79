package overrides

import (
	"context"
	"maps"
	"sync"

	"github.com/sells-group/leads-cli/internal/model"
)

// MemoryStore keeps overrides in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]model.Override
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]model.Override)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Override, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.data[id]
	return o, ok, nil
}

// GetAll implements Store. The returned map is a copy.
func (s *MemoryStore) GetAll(_ context.Context) (map[string]model.Override, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.data), nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, id string, patch model.Override) error {
	if err := checkWrite(id, patch); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = s.data[id].Merge(patch)
	return nil
}
