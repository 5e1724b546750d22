package voice

import (
	"net/http"
	"time"
)

// Canonical, provider-agnostic webhook model.
//
// Rules:
// - No provider SDK calls outside voice adapters.
// - Adapters translate provider payloads into WebhookEvent; they never persist.
// - The original provider payload is always preserved under Metadata["raw"]
//   for audit/debugging.

type EventType string

const (
	EventCallStarted      EventType = "call.started"
	EventCallEnded        EventType = "call.ended"
	EventCallFailed       EventType = "call.failed"
	EventTranscriptPartial EventType = "transcript.partial"
	EventTranscriptFinal  EventType = "transcript.final"
	EventFunctionCalled   EventType = "function.called"
)

type CallDirection string

const (
	DirectionInbound  CallDirection = "inbound"
	DirectionOutbound CallDirection = "outbound"
)

type CallStatus string

const (
	CallStatusInProgress CallStatus = "in_progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusMissed     CallStatus = "missed"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// TranscriptRole is the canonical speaker label set. Adapters normalize
// provider-specific labels (e.g., "assistant", "agent") into this set.
type TranscriptRole string

const (
	RoleAI     TranscriptRole = "ai"
	RoleUser   TranscriptRole = "user"
	RoleSystem TranscriptRole = "system"
)

type TranscriptMessage struct {
	Role      TranscriptRole `json:"role"`
	Content   string         `json:"content"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// CallEvent is the normalized call payload carried by a WebhookEvent.
// It is the transport between an Adapter and the accounting pipeline and
// is never persisted as-is.
type CallEvent struct {
	// CallID is the provider-scoped external call identifier. May be empty
	// when the provider omitted it; downstream treats empty ids as drop
	// conditions, not errors.
	CallID string `json:"call_id"`

	// AgentExternalID is the provider-assigned agent/assistant identifier
	// used to attribute the event to a tenant.
	AgentExternalID string `json:"agent_external_id,omitempty"`

	Direction   CallDirection `json:"direction"`
	CallerPhone string        `json:"caller_phone,omitempty"`
	CallerName  string        `json:"caller_name,omitempty"`

	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	// DurationSeconds is set only when both timestamps were present in the
	// provider payload. Never assumed zero.
	DurationSeconds *int `json:"duration_seconds,omitempty"`

	Status       CallStatus `json:"status"`
	RecordingURL string     `json:"recording_url,omitempty"`

	Transcript []TranscriptMessage `json:"transcript,omitempty"`

	Summary   string    `json:"summary,omitempty"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

type WebhookEvent struct {
	Type EventType `json:"type"`
	Call CallEvent `json:"call"`
}

// Adapter translates one provider's webhook traffic into canonical events.
//
// VerifySignature operates on the exact raw request bytes, before any JSON
// parsing, and must use a constant-time comparison. An empty configured
// secret accepts all requests with a loud warning (development fallback);
// any mismatch or malformed signature fails closed.
//
// ParseWebhook returns (nil, nil) for provider events with no canonical
// meaning; that is a deliberate filter, not an error.
type Adapter interface {
	Name() string

	// SignatureHeaders lists header names checked for the signature value,
	// in priority order.
	SignatureHeaders() []string

	VerifySignature(rawBody []byte, signature string) bool
	ParseWebhook(rawBody []byte, headers http.Header) (*WebhookEvent, error)
}
