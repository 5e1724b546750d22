package accounts

import (
	"context"
	"database/sql"
	"errors"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) FindOrganization(ctx context.Context, organizationID string) (Organization, error) {
	const q = `
SELECT id, name, COALESCE(plan_id, ''), subscription_status, trial_ends_at,
       current_period_start, current_period_end, minutes_used, created_at, updated_at
FROM organizations
WHERE id = $1
`
	var org Organization
	var trialEndsAt, periodStart, periodEnd sql.NullTime
	err := r.db.QueryRowContext(ctx, q, organizationID).Scan(
		&org.ID,
		&org.Name,
		&org.PlanID,
		&org.SubscriptionStatus,
		&trialEndsAt,
		&periodStart,
		&periodEnd,
		&org.MinutesUsed,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Organization{}, ErrNotFound
		}
		return Organization{}, err
	}
	if trialEndsAt.Valid {
		t := trialEndsAt.Time
		org.TrialEndsAt = &t
	}
	if periodStart.Valid {
		t := periodStart.Time
		org.CurrentPeriodStart = &t
	}
	if periodEnd.Valid {
		t := periodEnd.Time
		org.CurrentPeriodEnd = &t
	}
	return org, nil
}
