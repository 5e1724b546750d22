package usage

import (
	"context"
	"database/sql"
	"fmt"
)

// NOTE: This repository assumes the following schema:
// - usage_log with UNIQUE (organization_id, call_id)
// - organizations.minutes_used INT NOT NULL DEFAULT 0

func insertEntry(ctx context.Context, tx *sql.Tx, e UsageEntry) (bool, error) {
	const q = `
INSERT INTO usage_log (
  id, organization_id, call_id, external_call_id, duration_seconds, minutes, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7
)
ON CONFLICT (organization_id, call_id) DO NOTHING
`
	res, err := tx.ExecContext(ctx, q,
		e.ID,
		e.OrganizationID,
		e.CallID,
		e.ExternalCallID,
		e.DurationSeconds,
		e.Minutes,
		e.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert usage entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func incrementMinutesUsed(ctx context.Context, tx *sql.Tx, organizationID string, minutes int) error {
	// Single atomic increment; no read-modify-write.
	const q = `
UPDATE organizations
SET minutes_used = minutes_used + $2,
    updated_at = NOW()
WHERE id = $1
`
	_, err := tx.ExecContext(ctx, q, organizationID, minutes)
	if err != nil {
		return fmt.Errorf("increment minutes_used: %w", err)
	}
	return nil
}
