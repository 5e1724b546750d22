package audit

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory append-only delivery log for tests and early
// development.
type MemoryRepo struct {
	mu         sync.Mutex
	Deliveries []Delivery
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, d Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deliveries = append(r.Deliveries, d)
	return nil
}

func (r *MemoryRepo) All() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Delivery, len(r.Deliveries))
	copy(out, r.Deliveries)
	return out
}
