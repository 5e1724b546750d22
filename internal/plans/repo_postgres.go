package plans

import (
	"context"
	"database/sql"
	"errors"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) FindByID(ctx context.Context, planID string) (Plan, error) {
	const q = `
SELECT id, name, display_name, price_cents, minutes_included, max_phone_numbers,
       max_agents, is_active, created_at
FROM plans
WHERE id = $1
`
	var p Plan
	var maxAgents sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, planID).Scan(
		&p.ID,
		&p.Name,
		&p.DisplayName,
		&p.PriceCents,
		&p.MinutesIncluded,
		&p.MaxPhoneNumbers,
		&maxAgents,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Plan{}, ErrNotFound
		}
		return Plan{}, err
	}
	if maxAgents.Valid {
		n := int(maxAgents.Int64)
		p.MaxAgents = &n
	}
	return p, nil
}
