package checkout

import (
	"context"
	"sync"
	"time"
)

// PendingCheckout is the only state that survives the redirect to the
// gateway: the correlation between a local order and its remote counterpart,
// keyed per checkout attempt. Written once before the navigation, read once
// on return, deleted unconditionally on any terminal outcome.
type PendingCheckout struct {
	CheckoutKey    string    `gorm:"primaryKey;size:64" json:"checkout_key"`
	LocalOrderID   string    `gorm:"size:64;not null" json:"local_order_id"`
	GatewayOrderID string    `gorm:"size:128;not null" json:"gateway_order_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// CorrelationStore holds at most one PendingCheckout per key. Put overwrites
// an existing record (a prior never-resumed attempt is presumed abandoned);
// Get returns (nil, nil) when no record exists; Delete of a missing key is
// not an error.
type CorrelationStore interface {
	Put(ctx context.Context, rec PendingCheckout) error
	Get(ctx context.Context, key string) (*PendingCheckout, error)
	Delete(ctx context.Context, key string) error
}

// MemoryStore is a process-local CorrelationStore for tests and single-node
// deployments.
type MemoryStore struct {
	mu   sync.Mutex
	recs map[string]PendingCheckout
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: map[string]PendingCheckout{}}
}

func (s *MemoryStore) Put(_ context.Context, rec PendingCheckout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.CheckoutKey] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (*PendingCheckout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, key)
	return nil
}
