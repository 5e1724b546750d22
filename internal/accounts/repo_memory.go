package accounts

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory organization repository for tests and early
// development.
type MemoryRepo struct {
	mu   sync.Mutex
	Orgs map[string]Organization
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{Orgs: map[string]Organization{}} }

func (r *MemoryRepo) Add(org Organization) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Orgs[org.ID] = org
}

func (r *MemoryRepo) FindOrganization(ctx context.Context, organizationID string) (Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	org, ok := r.Orgs[organizationID]
	if !ok {
		return Organization{}, ErrNotFound
	}
	return org, nil
}
