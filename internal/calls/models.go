package calls

import (
	"encoding/json"
	"time"
)

// Call represents a tenant-scoped phone call handled by an AI agent.
//
// Multi-tenant invariant: OrganizationID is required on every row.
//
// ExternalCallID is the provider-scoped call identifier; at most one Call row
// exists per (organization_id, external_call_id). It is how terminal webhook
// events find the record created by call.started.
type Call struct {
	ID             string `json:"id" db:"id"`
	OrganizationID string `json:"organization_id" db:"organization_id"`
	AgentID        string `json:"agent_id,omitempty" db:"agent_id"`

	ExternalCallID string `json:"external_call_id" db:"external_call_id"`

	Direction CallDirection `json:"direction" db:"direction"`
	Status    CallStatus    `json:"status" db:"status"`

	CallerPhone string `json:"caller_phone,omitempty" db:"caller_phone"`
	CallerName  string `json:"caller_name,omitempty" db:"caller_name"`

	StartedAt time.Time  `json:"started_at" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`

	// DurationSeconds is 0 until the call reaches a terminal state with a
	// known duration.
	DurationSeconds int `json:"duration_seconds" db:"duration_seconds"`

	RecordingURL string `json:"recording_url,omitempty" db:"recording_url"`

	// AI-derived fields, populated on transcript.final / call.ended.
	Summary   string `json:"summary,omitempty" db:"summary"`
	Sentiment string `json:"sentiment,omitempty" db:"sentiment"`
	Outcome   string `json:"outcome,omitempty" db:"outcome"`

	// Metadata holds free-form provider context (JSONB in Postgres),
	// including the raw payload for auditability.
	Metadata json.RawMessage `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CallDirection string

const (
	CallDirectionInbound  CallDirection = "inbound"
	CallDirectionOutbound CallDirection = "outbound"
)

type CallStatus string

const (
	CallStatusInProgress CallStatus = "in_progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusMissed     CallStatus = "missed"
)

// OutcomeAppointmentBooked is the outcome value that counts toward the
// appointments_booked analytics rollup.
const OutcomeAppointmentBooked = "appointment_booked"

// TranscriptMessage is one ordered entry of a call transcript.
type TranscriptMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Transcript is one-to-one with a Call and replaced wholesale on conflict;
// it is never duplicated per call.
type Transcript struct {
	ID        string              `json:"id" db:"id"`
	CallID    string              `json:"call_id" db:"call_id"`
	Messages  []TranscriptMessage `json:"messages" db:"messages"`
	CreatedAt time.Time           `json:"created_at" db:"created_at"`
}

// CompletionUpdate carries the terminal-state mutation applied on
// call.ended / transcript.final.
type CompletionUpdate struct {
	EndedAt         *time.Time
	DurationSeconds *int
	RecordingURL    string
	Summary         string
	Sentiment       string
	Outcome         string
}
