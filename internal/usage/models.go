package usage

import "time"

// UsageEntry is an immutable append-only record of billable minutes posted
// for one completed call.
//
// Multi-tenant invariant: organization_id required.
// Billing invariant: the organization's minutes_used counter is never
// mutated without a corresponding usage entry, and at most one entry exists
// per (organization_id, call_id). The entry doubles as the idempotency guard
// for replayed terminal webhook events.
type UsageEntry struct {
	ID             string `json:"id" db:"id"`
	OrganizationID string `json:"organization_id" db:"organization_id"`

	CallID         string `json:"call_id" db:"call_id"`
	ExternalCallID string `json:"external_call_id,omitempty" db:"external_call_id"`

	// DurationSeconds is the raw elapsed call time.
	DurationSeconds int `json:"duration_seconds" db:"duration_seconds"`

	// Minutes is the billed amount: duration rounded up to the next whole
	// minute. Partial minutes are billed as full minutes, never floored.
	Minutes int `json:"minutes" db:"minutes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BillableMinutes converts elapsed seconds to billed minutes using ceiling
// rounding: a 1-second call consumes 1 minute.
func BillableMinutes(durationSeconds int) int {
	if durationSeconds <= 0 {
		return 0
	}
	return (durationSeconds + 59) / 60
}
