package agents

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo backs agent attribution with the agents table.
//
// Assumes a unique index on voice_provider_agent_id.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) FindByProviderAgentID(ctx context.Context, providerAgentID string) (Ref, error) {
	if providerAgentID == "" {
		return Ref{}, ErrNotFound
	}
	const q = `
SELECT id, organization_id
FROM agents
WHERE voice_provider_agent_id = $1
`
	var ref Ref
	if err := r.db.QueryRowContext(ctx, q, providerAgentID).Scan(&ref.AgentID, &ref.OrganizationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Ref{}, ErrNotFound
		}
		return Ref{}, err
	}
	return ref, nil
}
