package audit

import "time"

// Delivery is an immutable, append-only record of one webhook delivery.
//
// Invariants:
// - Records are never updated or deleted.
// - Recording is best-effort; the webhook pipeline must not fail a
//   delivery because its audit write failed.
//
// Storage recommendation (Postgres):
// - Table webhook_deliveries with an INSERT-only policy.
// - Optional: partition by time for retention.

type Delivery struct {
	ID string `json:"id" db:"id"`

	// OrganizationID is empty for deliveries dropped before attribution
	// (unknown agent, skipped event types).
	OrganizationID string `json:"organization_id,omitempty" db:"organization_id"`

	Provider       string `json:"provider" db:"provider"`
	EventType      string `json:"event_type,omitempty" db:"event_type"`
	ExternalCallID string `json:"external_call_id,omitempty" db:"external_call_id"`

	Disposition Disposition `json:"disposition" db:"disposition"`

	// Message is a short human-readable note for internal ops
	// (e.g., the lock reason observed on an admission check).
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Disposition string

const (
	// DispositionProcessed: the event mutated call/usage/analytics state.
	DispositionProcessed Disposition = "processed"
	// DispositionSkipped: the adapter produced no canonical event.
	DispositionSkipped Disposition = "skipped"
	// DispositionDropped: acknowledged but unattributable (unknown agent,
	// missing call id).
	DispositionDropped Disposition = "dropped"
	// DispositionFailed: processing raised an error; provider will retry.
	DispositionFailed Disposition = "failed"
)
