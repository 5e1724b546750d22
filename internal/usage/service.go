package usage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ringr-platform/pkg/utils"

	"github.com/google/uuid"
)

var ErrInvalidArgument = errors.New("usage: invalid argument")

// Service posts billable minutes for completed calls.
//
// Invariants:
// - Ledger is append-only (immutable).
// - At most one ledger entry per (organization_id, call_id); replays of the
//   same call post nothing.
// - The minutes_used projection on organizations is updated atomically in
//   the same transaction as the ledger insert.
type Service struct {
	db *sql.DB
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

// RecordCallUsage bills ceil(durationSeconds/60) minutes to the organization.
// Returns false when usage for this call was already posted.
func (s *Service) RecordCallUsage(ctx context.Context, organizationID, callID, externalCallID string, durationSeconds int) (bool, error) {
	if organizationID == "" || callID == "" {
		return false, ErrInvalidArgument
	}
	if durationSeconds <= 0 {
		return false, ErrInvalidArgument
	}

	entry := UsageEntry{
		ID:              uuid.NewString(),
		OrganizationID:  organizationID,
		CallID:          callID,
		ExternalCallID:  externalCallID,
		DurationSeconds: durationSeconds,
		Minutes:         BillableMinutes(durationSeconds),
		CreatedAt:       s.clock().UTC(),
	}

	var posted bool
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		inserted, err := insertEntry(ctx, tx, entry)
		if err != nil {
			return err
		}
		if !inserted {
			// Replayed terminal event; the projection already reflects this call.
			return nil
		}
		if err := incrementMinutesUsed(ctx, tx, organizationID, entry.Minutes); err != nil {
			return err
		}
		posted = true
		return nil
	})
	return posted, err
}
