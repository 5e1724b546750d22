package voice

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// RetellAdapter translates Retell AI webhook payloads.
//
// Retell posts JSON with an "event" discriminator and millisecond epoch
// timestamps, and signs the raw body with HMAC-SHA256 (hex) in
// X-Retell-Signature.

const ProviderRetell = "retell"

type retellPayload struct {
	Event string `json:"event"`
	Call  *struct {
		CallID         string `json:"call_id"`
		AgentID        string `json:"agent_id"`
		Direction      string `json:"direction"`
		FromNumber     string `json:"from_number"`
		StartTimestamp int64  `json:"start_timestamp"`
		EndTimestamp   int64  `json:"end_timestamp"`
		RecordingURL   string `json:"recording_url"`

		TranscriptObject []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"transcript_object"`

		CallAnalysis *struct {
			CallSummary   string `json:"call_summary"`
			UserSentiment string `json:"user_sentiment"`
			Outcome       string `json:"custom_outcome"`
		} `json:"call_analysis"`
	} `json:"call"`
}

type RetellAdapter struct {
	secret string
	clock  func() time.Time
}

func NewRetellAdapter(secret string) *RetellAdapter {
	return &RetellAdapter{secret: secret, clock: time.Now}
}

func (a *RetellAdapter) Name() string { return ProviderRetell }

func (a *RetellAdapter) SignatureHeaders() []string {
	return []string{"X-Retell-Signature", "X-Webhook-Signature"}
}

func (a *RetellAdapter) VerifySignature(rawBody []byte, signature string) bool {
	if a.secret == "" {
		slog.Warn("retell webhook secret not configured, accepting unverified request")
		return true
	}
	mac := hmac.New(sha256.New, []byte(a.secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

func mapRetellEventType(e string) EventType {
	switch e {
	case "call_started":
		return EventCallStarted
	case "call_ended":
		return EventCallEnded
	case "call_analyzed":
		return EventTranscriptFinal
	default:
		return ""
	}
}

func mapRetellSentiment(s string) Sentiment {
	switch s {
	case "Positive", "positive":
		return SentimentPositive
	case "Negative", "negative":
		return SentimentNegative
	case "Neutral", "neutral":
		return SentimentNeutral
	default:
		return ""
	}
}

func (a *RetellAdapter) ParseWebhook(rawBody []byte, _ http.Header) (*WebhookEvent, error) {
	var p retellPayload
	if err := json.Unmarshal(rawBody, &p); err != nil {
		return nil, err
	}
	if p.Event == "" {
		slog.Warn("retell webhook missing event, skipping")
		return nil, nil
	}

	eventType := mapRetellEventType(p.Event)
	if eventType == "" {
		return nil, nil
	}

	call := CallEvent{
		Direction: DirectionInbound,
		Status:    CallStatusInProgress,
		StartedAt: a.clock().UTC(),
		Metadata:  map[string]any{"raw": json.RawMessage(rawBody)},
	}

	if p.Call != nil {
		call.CallID = p.Call.CallID
		call.AgentExternalID = p.Call.AgentID
		if p.Call.Direction == string(DirectionOutbound) {
			call.Direction = DirectionOutbound
		}
		call.CallerPhone = p.Call.FromNumber
		call.RecordingURL = p.Call.RecordingURL

		if p.Call.StartTimestamp > 0 {
			call.StartedAt = time.UnixMilli(p.Call.StartTimestamp).UTC()
		}
		if p.Call.EndTimestamp > 0 {
			ended := time.UnixMilli(p.Call.EndTimestamp).UTC()
			call.EndedAt = &ended
		}
		if p.Call.StartTimestamp > 0 && p.Call.EndTimestamp > 0 {
			d := int(math.Round(float64(p.Call.EndTimestamp-p.Call.StartTimestamp) / 1000))
			call.DurationSeconds = &d
		}

		for _, m := range p.Call.TranscriptObject {
			msg := TranscriptMessage{Content: m.Content}
			switch m.Role {
			case "agent":
				msg.Role = RoleAI
			case "user":
				msg.Role = RoleUser
			default:
				msg.Role = RoleSystem
			}
			call.Transcript = append(call.Transcript, msg)
		}

		if p.Call.CallAnalysis != nil {
			call.Summary = p.Call.CallAnalysis.CallSummary
			call.Sentiment = mapRetellSentiment(p.Call.CallAnalysis.UserSentiment)
			call.Outcome = p.Call.CallAnalysis.Outcome
		}
	}

	switch eventType {
	case EventCallEnded, EventTranscriptFinal:
		call.Status = CallStatusCompleted
	}

	return &WebhookEvent{Type: eventType, Call: call}, nil
}
