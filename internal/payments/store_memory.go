package payments

import (
	"context"
	"sync"

	id "github.com/Soozey/MADAVOLA/pkg/domain"
	"github.com/Soozey/MADAVOLA/pkg/platform/sentinel"
)

// MemoryStore is the in-memory payment result fake used by tests and local runs.
type MemoryStore struct {
	mu       sync.RWMutex
	payments map[id.PaymentID]Payment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payments: make(map[id.PaymentID]Payment)}
}

// Put records a payment result, standing in for the provider webhook handler.
func (s *MemoryStore) Put(_ context.Context, payment Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[payment.ID] = payment
}

func (s *MemoryStore) Get(_ context.Context, paymentID id.PaymentID) (*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payment, ok := s.payments[paymentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &payment, nil
}
