package agents

import (
	"context"
	"errors"
	"time"
)

// Agent is a tenant-scoped AI phone agent.
//
// Multi-tenant invariant: OrganizationID is required on every row.
//
// VoiceProviderAgentID is the provider-assigned identifier (e.g., a Vapi
// assistant id). It is the only way an inbound webhook is attributed to a
// tenant; it must be unique across the deployment.
type Agent struct {
	ID             string `json:"id" db:"id"`
	OrganizationID string `json:"organization_id" db:"organization_id"`

	Name        string `json:"name" db:"name"`
	PhoneNumber string `json:"phone_number,omitempty" db:"phone_number"`
	IsActive    bool   `json:"is_active" db:"is_active"`

	VoiceProvider        string `json:"voice_provider" db:"voice_provider"`
	VoiceProviderAgentID string `json:"voice_provider_agent_id" db:"voice_provider_agent_id"`

	GreetingMessage string `json:"greeting_message,omitempty" db:"greeting_message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Ref is the attribution result for a webhook delivery: which internal agent
// and which tenant own a provider agent id.
type Ref struct {
	AgentID        string `json:"agent_id"`
	OrganizationID string `json:"organization_id"`
}

var ErrNotFound = errors.New("agents: not found")

type Repository interface {
	// FindByProviderAgentID resolves the owning tenant for a
	// provider-assigned agent identifier. Returns ErrNotFound when this
	// deployment does not know the agent.
	FindByProviderAgentID(ctx context.Context, providerAgentID string) (Ref, error)
}
