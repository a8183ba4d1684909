package persistence

import (
	"context"
	"sync"

	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/contactdesk/backend/internal/domain/shared"
)

// MemoryCustomerStore keeps customers in process memory. Its lifetime is the
// lifetime of the value: one per server, or one per test.
type MemoryCustomerStore struct {
	mu    sync.RWMutex
	items []customer.Customer
}

// NewMemoryCustomerStore creates a store holding a copy of seed
func NewMemoryCustomerStore(seed ...customer.Customer) *MemoryCustomerStore {
	return &MemoryCustomerStore{items: append([]customer.Customer(nil), seed...)}
}

// List returns a copy of every record in insertion order
func (s *MemoryCustomerStore) List(_ context.Context) ([]customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]customer.Customer, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Get returns the record with the given id
func (s *MemoryCustomerStore) Get(_ context.Context, id customer.ID) (*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		c := s.items[i]
		return &c, nil
	}
	return nil, shared.ErrNotFound
}

// Create appends a record. The ID must be set and unused.
func (s *MemoryCustomerStore) Create(_ context.Context, c *customer.Customer) error {
	if c.ID.IsZero() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "customer id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index(c.ID) >= 0 {
		return shared.NewDomainError("ALREADY_EXISTS", "customer already exists")
	}
	s.items = append(s.items, *c)
	return nil
}

// Update replaces the stored record with the same id
func (s *MemoryCustomerStore) Update(_ context.Context, c *customer.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(c.ID)
	if i < 0 {
		return shared.ErrNotFound
	}
	s.items[i] = *c
	return nil
}

// Delete removes the record with the given id
func (s *MemoryCustomerStore) Delete(_ context.Context, id customer.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return shared.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *MemoryCustomerStore) index(id customer.ID) int {
	for i, c := range s.items {
		if c.ID == id {
			return i
		}
	}
	return -1
}

var _ customer.Repository = (*MemoryCustomerStore)(nil)
