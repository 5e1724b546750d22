package calls

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresRepo assumes the following tables exist:
// - calls       (UNIQUE (organization_id, external_call_id))
// - transcripts (UNIQUE (call_id))
type PostgresRepo struct {
	db *sql.DB
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db, clock: time.Now}
}

func (r *PostgresRepo) Create(ctx context.Context, c Call) (bool, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.clock().UTC()
	}
	// Duplicate start deliveries land on the conflict target and insert nothing.
	const q = `
INSERT INTO calls (
  id, organization_id, agent_id, external_call_id, direction, status,
  caller_phone, caller_name, started_at, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
ON CONFLICT (organization_id, external_call_id) DO NOTHING
`
	res, err := r.db.ExecContext(ctx, q,
		c.ID,
		c.OrganizationID,
		nullIfEmpty(c.AgentID),
		c.ExternalCallID,
		c.Direction,
		c.Status,
		c.CallerPhone,
		c.CallerName,
		c.StartedAt,
		metadataOrEmpty(c.Metadata),
		c.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert call: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepo) FindByExternalID(ctx context.Context, organizationID, externalCallID string) (Call, error) {
	const q = `
SELECT id, organization_id, COALESCE(agent_id, ''), external_call_id, direction, status,
       caller_phone, caller_name, started_at, ended_at, duration_seconds,
       COALESCE(recording_url, ''), COALESCE(summary, ''), COALESCE(sentiment, ''),
       COALESCE(outcome, ''), metadata, created_at
FROM calls
WHERE organization_id = $1 AND external_call_id = $2
`
	return r.scanCall(r.db.QueryRowContext(ctx, q, organizationID, externalCallID))
}

func (r *PostgresRepo) CompleteIfInProgress(ctx context.Context, callID string, upd CompletionUpdate) (bool, error) {
	// The status guard makes terminal transitions apply-at-most-once under
	// concurrent or replayed deliveries.
	const q = `
UPDATE calls
SET status = $2,
    ended_at = COALESCE($3, ended_at),
    duration_seconds = COALESCE($4, duration_seconds),
    recording_url = COALESCE(NULLIF($5, ''), recording_url),
    summary = COALESCE(NULLIF($6, ''), summary),
    sentiment = COALESCE(NULLIF($7, ''), sentiment),
    outcome = COALESCE(NULLIF($8, ''), outcome)
WHERE id = $1 AND status = $9
`
	res, err := r.db.ExecContext(ctx, q,
		callID,
		CallStatusCompleted,
		upd.EndedAt,
		upd.DurationSeconds,
		upd.RecordingURL,
		upd.Summary,
		upd.Sentiment,
		upd.Outcome,
		CallStatusInProgress,
	)
	if err != nil {
		return false, fmt.Errorf("complete call: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepo) MarkFailedIfInProgress(ctx context.Context, callID string) (bool, error) {
	const q = `
UPDATE calls
SET status = $2
WHERE id = $1 AND status = $3
`
	res, err := r.db.ExecContext(ctx, q, callID, CallStatusFailed, CallStatusInProgress)
	if err != nil {
		return false, fmt.Errorf("fail call: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepo) UpsertTranscript(ctx context.Context, callID string, messages []TranscriptMessage) error {
	buf, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	const q = `
INSERT INTO transcripts (id, call_id, messages, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (call_id)
DO UPDATE SET messages = EXCLUDED.messages
`
	_, err = r.db.ExecContext(ctx, q, uuid.NewString(), callID, buf, r.clock().UTC())
	if err != nil {
		return fmt.Errorf("upsert transcript: %w", err)
	}
	return nil
}

func (r *PostgresRepo) ListRecent(ctx context.Context, organizationID string, limit int) ([]Call, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const q = `
SELECT id, organization_id, COALESCE(agent_id, ''), external_call_id, direction, status,
       caller_phone, caller_name, started_at, ended_at, duration_seconds,
       COALESCE(recording_url, ''), COALESCE(summary, ''), COALESCE(sentiment, ''),
       COALESCE(outcome, ''), metadata, created_at
FROM calls
WHERE organization_id = $1
ORDER BY started_at DESC
LIMIT $2
`
	rows, err := r.db.QueryContext(ctx, q, organizationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Call, 0, limit)
	for rows.Next() {
		c, err := r.scanCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetByID(ctx context.Context, organizationID, callID string) (Call, error) {
	const q = `
SELECT id, organization_id, COALESCE(agent_id, ''), external_call_id, direction, status,
       caller_phone, caller_name, started_at, ended_at, duration_seconds,
       COALESCE(recording_url, ''), COALESCE(summary, ''), COALESCE(sentiment, ''),
       COALESCE(outcome, ''), metadata, created_at
FROM calls
WHERE organization_id = $1 AND id = $2
`
	return r.scanCall(r.db.QueryRowContext(ctx, q, organizationID, callID))
}

func (r *PostgresRepo) GetTranscript(ctx context.Context, callID string) (Transcript, error) {
	const q = `
SELECT id, call_id, messages, created_at
FROM transcripts
WHERE call_id = $1
`
	var t Transcript
	var buf []byte
	err := r.db.QueryRowContext(ctx, q, callID).Scan(&t.ID, &t.CallID, &buf, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Transcript{}, ErrNotFound
		}
		return Transcript{}, err
	}
	if err := json.Unmarshal(buf, &t.Messages); err != nil {
		return Transcript{}, fmt.Errorf("decode transcript: %w", err)
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepo) scanCall(row rowScanner) (Call, error) {
	var c Call
	var endedAt sql.NullTime
	var metadata []byte
	err := row.Scan(
		&c.ID,
		&c.OrganizationID,
		&c.AgentID,
		&c.ExternalCallID,
		&c.Direction,
		&c.Status,
		&c.CallerPhone,
		&c.CallerName,
		&c.StartedAt,
		&endedAt,
		&c.DurationSeconds,
		&c.RecordingURL,
		&c.Summary,
		&c.Sentiment,
		&c.Outcome,
		&metadata,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Call{}, ErrNotFound
		}
		return Call{}, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		c.EndedAt = &t
	}
	c.Metadata = metadata
	return c, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func metadataOrEmpty(m json.RawMessage) []byte {
	if len(m) == 0 {
		return []byte(`{}`)
	}
	return m
}
