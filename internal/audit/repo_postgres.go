package audit

import (
	"context"
	"database/sql"
	"fmt"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, d Delivery) error {
	const q = `
INSERT INTO webhook_deliveries (
  id, organization_id, provider, event_type, external_call_id, disposition, message, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8
)
`
	_, err := r.db.ExecContext(ctx, q,
		d.ID,
		nullIfEmpty(d.OrganizationID),
		d.Provider,
		d.EventType,
		d.ExternalCallID,
		d.Disposition,
		d.Message,
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append delivery: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
