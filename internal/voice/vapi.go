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

// VapiAdapter translates Vapi webhook payloads.
// Ref: https://docs.vapi.ai/server-url/events
//
// Vapi signs the raw body with HMAC-SHA256 (hex) using a shared secret and
// sends the digest in X-Vapi-Signature.

const ProviderVapi = "vapi"

type vapiPayload struct {
	Type string `json:"type"`
	Call *struct {
		ID          string `json:"id"`
		AssistantID string `json:"assistantId"`
		Type        string `json:"type"`
		Customer    *struct {
			Number string `json:"number"`
			Name   string `json:"name"`
		} `json:"customer"`
		StartedAt    string `json:"startedAt"`
		EndedAt      string `json:"endedAt"`
		Status       string `json:"status"`
		RecordingURL string `json:"recordingUrl"`
	} `json:"call"`
	Transcript string `json:"transcript"`
	Messages   []struct {
		Role    string `json:"role"`
		Message string `json:"message"`
		Time    int64  `json:"time"`
	} `json:"messages"`
	Summary  string `json:"summary"`
	Analysis *struct {
		Sentiment string `json:"sentiment"`
		Outcome   string `json:"outcome"`
	} `json:"analysis"`
}

type VapiAdapter struct {
	secret string
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewVapiAdapter(secret string) *VapiAdapter {
	return &VapiAdapter{secret: secret, clock: time.Now}
}

func (a *VapiAdapter) Name() string { return ProviderVapi }

func (a *VapiAdapter) SignatureHeaders() []string {
	return []string{"X-Vapi-Signature", "X-Webhook-Signature"}
}

func (a *VapiAdapter) VerifySignature(rawBody []byte, signature string) bool {
	if a.secret == "" {
		slog.Warn("vapi webhook secret not configured, accepting unverified request")
		return true
	}
	mac := hmac.New(sha256.New, []byte(a.secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

func mapVapiEventType(t string) EventType {
	switch t {
	case "call-started":
		return EventCallStarted
	case "call-ended":
		return EventCallEnded
	case "transcript":
		return EventTranscriptPartial
	case "end-of-call-report":
		return EventTranscriptFinal
	case "hang":
		return EventCallFailed
	case "function-call":
		return EventFunctionCalled
	default:
		return ""
	}
}

func (a *VapiAdapter) ParseWebhook(rawBody []byte, _ http.Header) (*WebhookEvent, error) {
	var p vapiPayload
	if err := json.Unmarshal(rawBody, &p); err != nil {
		return nil, err
	}
	if p.Type == "" {
		slog.Warn("vapi webhook missing type, skipping")
		return nil, nil
	}

	eventType := mapVapiEventType(p.Type)
	if eventType == "" {
		// Non-lifecycle telemetry (e.g., speech-update); intentionally skipped.
		return nil, nil
	}

	call := CallEvent{
		Direction: DirectionInbound,
		Status:    CallStatusInProgress,
		StartedAt: a.clock().UTC(),
		Metadata:  map[string]any{"raw": json.RawMessage(rawBody)},
	}

	if p.Call != nil {
		call.CallID = p.Call.ID
		call.AgentExternalID = p.Call.AssistantID
		if p.Call.Type == string(DirectionOutbound) {
			call.Direction = DirectionOutbound
		}
		if p.Call.Customer != nil {
			call.CallerPhone = p.Call.Customer.Number
			call.CallerName = p.Call.Customer.Name
		}
		call.RecordingURL = p.Call.RecordingURL

		started, startedOK := parseVapiTime(p.Call.StartedAt)
		ended, endedOK := parseVapiTime(p.Call.EndedAt)
		if startedOK {
			call.StartedAt = started
		}
		if endedOK {
			call.EndedAt = &ended
		}
		if startedOK && endedOK {
			d := int(math.Round(ended.Sub(started).Seconds()))
			call.DurationSeconds = &d
		}
	}

	switch p.Type {
	case "call-ended", "end-of-call-report":
		call.Status = CallStatusCompleted
	case "hang":
		call.Status = CallStatusFailed
	}

	for _, m := range p.Messages {
		msg := TranscriptMessage{Content: m.Message}
		switch m.Role {
		case "assistant":
			msg.Role = RoleAI
		case "user":
			msg.Role = RoleUser
		default:
			msg.Role = RoleSystem
		}
		if m.Time > 0 {
			msg.Timestamp = time.UnixMilli(m.Time).UTC().Format(time.RFC3339)
		}
		call.Transcript = append(call.Transcript, msg)
	}

	call.Summary = p.Summary
	if p.Analysis != nil {
		call.Sentiment = Sentiment(p.Analysis.Sentiment)
		call.Outcome = p.Analysis.Outcome
	}

	return &WebhookEvent{Type: eventType, Call: call}, nil
}

func parseVapiTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
