package plans

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory plan catalog for tests and early development.
type MemoryRepo struct {
	mu    sync.Mutex
	Plans map[string]Plan
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{Plans: map[string]Plan{}} }

func (r *MemoryRepo) Add(p Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Plans[p.ID] = p
}

func (r *MemoryRepo) FindByID(ctx context.Context, planID string) (Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Plans[planID]
	if !ok {
		return Plan{}, ErrNotFound
	}
	return p, nil
}
