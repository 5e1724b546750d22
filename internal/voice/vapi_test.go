package voice

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"
)

func signHex(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVapiVerifySignature(t *testing.T) {
	a := NewVapiAdapter("topsecret")
	body := []byte(`{"type":"call-started"}`)

	if !a.VerifySignature(body, signHex("topsecret", body)) {
		t.Fatalf("expected valid signature to pass")
	}

	tampered := []byte(`{"type":"call-started" }`)
	if a.VerifySignature(tampered, signHex("topsecret", body)) {
		t.Fatalf("expected tampered body to fail")
	}
	if a.VerifySignature(body, "not-a-signature") {
		t.Fatalf("expected malformed signature to fail")
	}
}

func TestVapiVerifySignature_NoSecretAcceptsAll(t *testing.T) {
	a := NewVapiAdapter("")
	if !a.VerifySignature([]byte("anything"), "") {
		t.Fatalf("expected permissive fallback without secret")
	}
}

func TestVapiParseWebhook_CallStarted(t *testing.T) {
	a := NewVapiAdapter("")
	body := []byte(`{
		"type": "call-started",
		"call": {
			"id": "c1",
			"assistantId": "asst_1",
			"type": "inbound",
			"customer": {"number": "+15551234567", "name": "Dana"},
			"startedAt": "2025-06-01T10:00:00Z"
		}
	}`)

	ev, err := a.ParseWebhook(body, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ev == nil {
		t.Fatalf("expected event")
	}
	if ev.Type != EventCallStarted {
		t.Fatalf("expected call.started, got %s", ev.Type)
	}
	if ev.Call.CallID != "c1" || ev.Call.AgentExternalID != "asst_1" {
		t.Fatalf("unexpected identifiers: %q %q", ev.Call.CallID, ev.Call.AgentExternalID)
	}
	if ev.Call.Direction != DirectionInbound {
		t.Fatalf("expected inbound")
	}
	if ev.Call.CallerPhone != "+15551234567" || ev.Call.CallerName != "Dana" {
		t.Fatalf("unexpected caller: %q %q", ev.Call.CallerPhone, ev.Call.CallerName)
	}
	if ev.Call.DurationSeconds != nil {
		t.Fatalf("duration must be unset without endedAt")
	}
	if ev.Call.Status != CallStatusInProgress {
		t.Fatalf("expected in_progress, got %s", ev.Call.Status)
	}
	if _, ok := ev.Call.Metadata["raw"]; !ok {
		t.Fatalf("expected raw payload in metadata")
	}
}

func TestVapiParseWebhook_EndOfCallReport(t *testing.T) {
	a := NewVapiAdapter("")
	body := []byte(`{
		"type": "end-of-call-report",
		"call": {
			"id": "c1",
			"assistantId": "asst_1",
			"startedAt": "2025-06-01T10:00:00Z",
			"endedAt": "2025-06-01T10:02:05Z",
			"recordingUrl": "https://rec.example/c1.wav"
		},
		"messages": [
			{"role": "assistant", "message": "Hello, how can I help?", "time": 1748772000000},
			{"role": "user", "message": "I need an appointment"},
			{"role": "tool", "message": "booked"}
		],
		"summary": "Caller booked an appointment.",
		"analysis": {"sentiment": "positive", "outcome": "appointment_booked"}
	}`)

	ev, err := a.ParseWebhook(body, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ev.Type != EventTranscriptFinal {
		t.Fatalf("expected transcript.final, got %s", ev.Type)
	}
	if ev.Call.Status != CallStatusCompleted {
		t.Fatalf("expected completed, got %s", ev.Call.Status)
	}
	if ev.Call.DurationSeconds == nil || *ev.Call.DurationSeconds != 125 {
		t.Fatalf("expected 125s duration, got %v", ev.Call.DurationSeconds)
	}
	if ev.Call.EndedAt == nil || !ev.Call.EndedAt.Equal(time.Date(2025, 6, 1, 10, 2, 5, 0, time.UTC)) {
		t.Fatalf("unexpected ended_at: %v", ev.Call.EndedAt)
	}
	if len(ev.Call.Transcript) != 3 {
		t.Fatalf("expected 3 transcript messages, got %d", len(ev.Call.Transcript))
	}
	if ev.Call.Transcript[0].Role != RoleAI {
		t.Fatalf("assistant must normalize to ai, got %s", ev.Call.Transcript[0].Role)
	}
	if ev.Call.Transcript[1].Role != RoleUser {
		t.Fatalf("expected user role, got %s", ev.Call.Transcript[1].Role)
	}
	if ev.Call.Transcript[2].Role != RoleSystem {
		t.Fatalf("unknown roles must normalize to system, got %s", ev.Call.Transcript[2].Role)
	}
	if ev.Call.Sentiment != SentimentPositive || ev.Call.Outcome != "appointment_booked" {
		t.Fatalf("unexpected analysis: %q %q", ev.Call.Sentiment, ev.Call.Outcome)
	}
	if ev.Call.RecordingURL != "https://rec.example/c1.wav" {
		t.Fatalf("unexpected recording url: %q", ev.Call.RecordingURL)
	}
}

func TestVapiParseWebhook_SkipsIrrelevantEvents(t *testing.T) {
	a := NewVapiAdapter("")

	ev, err := a.ParseWebhook([]byte(`{"type":"speech-update"}`), nil)
	if err != nil || ev != nil {
		t.Fatalf("speech-update must be skipped, got %v %v", ev, err)
	}

	ev, err = a.ParseWebhook([]byte(`{"call":{"id":"c1"}}`), nil)
	if err != nil || ev != nil {
		t.Fatalf("missing type must be skipped, got %v %v", ev, err)
	}
}

func TestVapiParseWebhook_MissingCallID(t *testing.T) {
	a := NewVapiAdapter("")
	ev, err := a.ParseWebhook([]byte(`{"type":"call-ended"}`), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ev == nil {
		t.Fatalf("expected event even without call id")
	}
	if ev.Call.CallID != "" {
		t.Fatalf("expected empty call id")
	}
}

func TestVapiParseWebhook_InvalidJSON(t *testing.T) {
	a := NewVapiAdapter("")
	if _, err := a.ParseWebhook([]byte(`{not json`), nil); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}
