package agents

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory agent repository for tests and early
// development.
type MemoryRepo struct {
	mu sync.Mutex

	// byProviderID maps voice_provider_agent_id -> Ref.
	byProviderID map[string]Ref
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byProviderID: map[string]Ref{}}
}

func (r *MemoryRepo) Register(providerAgentID string, ref Ref) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byProviderID[providerAgentID] = ref
}

func (r *MemoryRepo) FindByProviderAgentID(ctx context.Context, providerAgentID string) (Ref, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.byProviderID[providerAgentID]
	if !ok {
		return Ref{}, ErrNotFound
	}
	return ref, nil
}
