package memory

import (
	"context"
	"sort"
	"sync"

	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/storage"
)

// InvocationStore is an in-memory implementation of storage.InvocationStore.
type InvocationStore struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Invocation
	order []*domain.Invocation // insertion order
}

// NewInvocationStore creates a new in-memory invocation store.
func NewInvocationStore() *InvocationStore {
	return &InvocationStore{
		byID: make(map[string]*domain.Invocation),
	}
}

// Insert adds a new record. Returns ErrDuplicateKey if the id already exists.
func (s *InvocationStore) Insert(_ context.Context, inv *domain.Invocation) error {
	if inv == nil || inv.ID == "" || inv.Action == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[inv.ID]; exists {
		return storage.ErrDuplicateKey
	}

	invCopy := copyInvocation(inv)
	s.byID[inv.ID] = invCopy
	s.order = append(s.order, invCopy)
	return nil
}

// GetByID retrieves a record by id. Returns ErrNotFound if not exists.
func (s *InvocationStore) GetByID(_ context.Context, id string) (*domain.Invocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, exists := s.byID[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyInvocation(inv), nil
}

// ListRecent returns up to limit records ordered by timestamp DESC.
// Records with equal timestamps keep reverse insertion order.
func (s *InvocationStore) ListRecent(_ context.Context, limit int) ([]*domain.Invocation, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	s.mu.RLock()
	result := make([]*domain.Invocation, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		result = append(result, copyInvocation(s.order[i]))
	}
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp > result[j].Timestamp
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// CountByAction returns the number of recorded invocations per action.
func (s *InvocationStore) CountByAction(_ context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, inv := range s.order {
		counts[inv.Action]++
	}
	return counts, nil
}

func copyInvocation(inv *domain.Invocation) *domain.Invocation {
	c := *inv
	if inv.Params != nil {
		c.Params = append([]byte(nil), inv.Params...)
	}
	return &c
}

// Compile-time interface check.
var _ storage.InvocationStore = (*InvocationStore)(nil)
