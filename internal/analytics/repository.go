package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for daily rollups.
//
// Accumulate MUST be a single atomic accumulate-or-create statement.
// Concurrent webhook deliveries hit the same (organization_id, date) row;
// a read-then-write sequence silently drops increments under that load.
type Repository interface {
	Accumulate(ctx context.Context, organizationID, date string, d CallDelta) error
	Range(ctx context.Context, organizationID, from, to string) ([]DailyAnalytics, error)
}

// PostgresRepo assumes a call_analytics table with
// UNIQUE (organization_id, date).
type PostgresRepo struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db, clock: time.Now}
}

func (r *PostgresRepo) Accumulate(ctx context.Context, organizationID, date string, d CallDelta) error {
	// The average is recomputed from the post-update sums inside the same
	// statement; it is never carried forward incrementally.
	const q = `
INSERT INTO call_analytics (
  id, organization_id, date, total_calls, answered_calls, missed_calls,
  appointments_booked, total_duration_seconds, avg_duration_seconds, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,
  CASE WHEN $4 > 0 THEN $8 / $4 ELSE 0 END,
  $9
)
ON CONFLICT (organization_id, date)
DO UPDATE SET
  total_calls = call_analytics.total_calls + EXCLUDED.total_calls,
  answered_calls = call_analytics.answered_calls + EXCLUDED.answered_calls,
  missed_calls = call_analytics.missed_calls + EXCLUDED.missed_calls,
  appointments_booked = call_analytics.appointments_booked + EXCLUDED.appointments_booked,
  total_duration_seconds = call_analytics.total_duration_seconds + EXCLUDED.total_duration_seconds,
  avg_duration_seconds = CASE
    WHEN call_analytics.total_calls + EXCLUDED.total_calls > 0
    THEN (call_analytics.total_duration_seconds + EXCLUDED.total_duration_seconds)
         / (call_analytics.total_calls + EXCLUDED.total_calls)
    ELSE 0
  END
`
	_, err := r.db.ExecContext(ctx, q,
		uuid.NewString(),
		organizationID,
		date,
		d.TotalCalls,
		d.AnsweredCalls,
		d.MissedCalls,
		d.AppointmentsBooked,
		d.DurationSeconds,
		r.clock().UTC(),
	)
	if err != nil {
		return fmt.Errorf("accumulate analytics: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Range(ctx context.Context, organizationID, from, to string) ([]DailyAnalytics, error) {
	const q = `
SELECT id, organization_id, date, total_calls, answered_calls, missed_calls,
       appointments_booked, total_duration_seconds, avg_duration_seconds, created_at
FROM call_analytics
WHERE organization_id = $1 AND date >= $2 AND date <= $3
ORDER BY date
`
	rows, err := r.db.QueryContext(ctx, q, organizationID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyAnalytics
	for rows.Next() {
		var a DailyAnalytics
		if err := rows.Scan(
			&a.ID,
			&a.OrganizationID,
			&a.Date,
			&a.TotalCalls,
			&a.AnsweredCalls,
			&a.MissedCalls,
			&a.AppointmentsBooked,
			&a.TotalDurationSeconds,
			&a.AvgDurationSeconds,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
