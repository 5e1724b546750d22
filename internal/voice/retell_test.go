package voice

import "testing"

func TestRetellVerifySignature(t *testing.T) {
	a := NewRetellAdapter("retell-secret")
	body := []byte(`{"event":"call_started"}`)

	if !a.VerifySignature(body, signHex("retell-secret", body)) {
		t.Fatalf("expected valid signature to pass")
	}
	if a.VerifySignature([]byte(`{"event":"call_ended"}`), signHex("retell-secret", body)) {
		t.Fatalf("expected tampered body to fail")
	}
}

func TestRetellParseWebhook_CallAnalyzed(t *testing.T) {
	a := NewRetellAdapter("")
	body := []byte(`{
		"event": "call_analyzed",
		"call": {
			"call_id": "r1",
			"agent_id": "agent_9",
			"direction": "outbound",
			"from_number": "+15550001111",
			"start_timestamp": 1748772000000,
			"end_timestamp": 1748772061000,
			"recording_url": "https://rec.example/r1.mp3",
			"transcript_object": [
				{"role": "agent", "content": "Hi there"},
				{"role": "user", "content": "Hello"}
			],
			"call_analysis": {
				"call_summary": "Short greeting call.",
				"user_sentiment": "Neutral",
				"custom_outcome": "information_provided"
			}
		}
	}`)

	ev, err := a.ParseWebhook(body, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ev.Type != EventTranscriptFinal {
		t.Fatalf("call_analyzed must map to transcript.final, got %s", ev.Type)
	}
	if ev.Call.CallID != "r1" || ev.Call.AgentExternalID != "agent_9" {
		t.Fatalf("unexpected identifiers: %q %q", ev.Call.CallID, ev.Call.AgentExternalID)
	}
	if ev.Call.Direction != DirectionOutbound {
		t.Fatalf("expected outbound")
	}
	if ev.Call.DurationSeconds == nil || *ev.Call.DurationSeconds != 61 {
		t.Fatalf("expected 61s duration, got %v", ev.Call.DurationSeconds)
	}
	if ev.Call.Transcript[0].Role != RoleAI {
		t.Fatalf("agent role must normalize to ai")
	}
	if ev.Call.Sentiment != SentimentNeutral {
		t.Fatalf("expected neutral sentiment, got %q", ev.Call.Sentiment)
	}
	if ev.Call.Status != CallStatusCompleted {
		t.Fatalf("expected completed status")
	}
}

func TestRetellParseWebhook_SkipsUnknownEvents(t *testing.T) {
	a := NewRetellAdapter("")
	ev, err := a.ParseWebhook([]byte(`{"event":"call_ongoing"}`), nil)
	if err != nil || ev != nil {
		t.Fatalf("unmapped events must be skipped, got %v %v", ev, err)
	}
}
