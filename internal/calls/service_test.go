package calls

import (
	"context"
	"testing"
	"time"

	"ringr-platform/internal/agents"
	"ringr-platform/internal/voice"
)

type recordedUsage struct {
	organizationID  string
	callID          string
	externalCallID  string
	durationSeconds int
}

type stubUsage struct {
	posted  map[string]bool
	records []recordedUsage
}

func newStubUsage() *stubUsage { return &stubUsage{posted: map[string]bool{}} }

func (s *stubUsage) RecordCallUsage(ctx context.Context, organizationID, callID, externalCallID string, durationSeconds int) (bool, error) {
	key := organizationID + ":" + callID
	if s.posted[key] {
		return false, nil
	}
	s.posted[key] = true
	s.records = append(s.records, recordedUsage{organizationID, callID, externalCallID, durationSeconds})
	return true, nil
}

type recordedRollup struct {
	organizationID    string
	day               time.Time
	durationSeconds   int
	appointmentBooked bool
}

type stubAnalytics struct {
	records []recordedRollup
}

func (s *stubAnalytics) RecordCompletedCall(ctx context.Context, organizationID string, day time.Time, durationSeconds int, appointmentBooked bool) error {
	s.records = append(s.records, recordedRollup{organizationID, day, durationSeconds, appointmentBooked})
	return nil
}

var testRef = agents.Ref{AgentID: "agent1", OrganizationID: "org1"}

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService() (*Service, *MemoryRepo, *stubUsage, *stubAnalytics) {
	repo := NewMemoryRepo()
	u := newStubUsage()
	a := &stubAnalytics{}
	svc := NewService(repo, u, a)
	svc.clock = fixedClock
	return svc, repo, u, a
}

func startedEvent(callID string) *voice.WebhookEvent {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &voice.WebhookEvent{
		Type: voice.EventCallStarted,
		Call: voice.CallEvent{
			CallID:          callID,
			AgentExternalID: "asst_1",
			Direction:       "inbound",
			CallerPhone:     "+15551234567",
			StartedAt:       start,
			Status:          voice.CallStatusInProgress,
		},
	}
}

func endedEvent(callID string, durationSeconds int, outcome string) *voice.WebhookEvent {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Duration(durationSeconds) * time.Second)
	return &voice.WebhookEvent{
		Type: voice.EventCallEnded,
		Call: voice.CallEvent{
			CallID:          callID,
			AgentExternalID: "asst_1",
			StartedAt:       start,
			EndedAt:         &end,
			DurationSeconds: &durationSeconds,
			Status:          voice.CallStatusCompleted,
			Summary:         "summary",
			Outcome:         outcome,
			Transcript: []voice.TranscriptMessage{
				{Role: voice.RoleAI, Content: "Hello"},
				{Role: voice.RoleUser, Content: "Hi"},
			},
		},
	}
}

func TestApply_StartedCreatesInProgressCall(t *testing.T) {
	svc, repo, _, _ := newTestService()

	if err := svc.Apply(context.Background(), testRef, startedEvent("c1")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	call, err := repo.FindByExternalID(context.Background(), "org1", "c1")
	if err != nil {
		t.Fatalf("expected call row, got %v", err)
	}
	if call.Status != CallStatusInProgress {
		t.Fatalf("expected in_progress, got %s", call.Status)
	}
	if call.AgentID != "agent1" || call.OrganizationID != "org1" {
		t.Fatalf("wrong attribution: %+v", call)
	}
}

func TestApply_DuplicateStartedKeepsSingleRow(t *testing.T) {
	svc, repo, _, _ := newTestService()

	for i := 0; i < 3; i++ {
		if err := svc.Apply(context.Background(), testRef, startedEvent("c1")); err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
	}
	if len(repo.Calls) != 1 {
		t.Fatalf("expected 1 call row, got %d", len(repo.Calls))
	}
}

func TestApply_CompletedPostsUsageAndAnalytics(t *testing.T) {
	svc, repo, u, a := newTestService()
	ctx := context.Background()

	if err := svc.Apply(ctx, testRef, startedEvent("c1")); err != nil {
		t.Fatal(err)
	}
	if err := svc.Apply(ctx, testRef, endedEvent("c1", 125, OutcomeAppointmentBooked)); err != nil {
		t.Fatal(err)
	}

	call, _ := repo.FindByExternalID(ctx, "org1", "c1")
	if call.Status != CallStatusCompleted {
		t.Fatalf("expected completed, got %s", call.Status)
	}
	if call.DurationSeconds != 125 {
		t.Fatalf("expected duration 125, got %d", call.DurationSeconds)
	}

	tr, err := repo.GetTranscript(ctx, call.ID)
	if err != nil || len(tr.Messages) != 2 {
		t.Fatalf("expected 2 transcript messages, got %v %v", tr, err)
	}

	if len(u.records) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(u.records))
	}
	if u.records[0].durationSeconds != 125 || u.records[0].externalCallID != "c1" {
		t.Fatalf("unexpected usage record: %+v", u.records[0])
	}

	if len(a.records) != 1 {
		t.Fatalf("expected 1 analytics record, got %d", len(a.records))
	}
	r := a.records[0]
	if !r.appointmentBooked || r.durationSeconds != 125 {
		t.Fatalf("unexpected analytics record: %+v", r)
	}
	if !r.day.Equal(fixedClock()) {
		t.Fatalf("analytics must use the server clock day, got %v", r.day)
	}
}

func TestApply_TerminalReplayIsNoOp(t *testing.T) {
	svc, _, u, a := newTestService()
	ctx := context.Background()

	if err := svc.Apply(ctx, testRef, startedEvent("c1")); err != nil {
		t.Fatal(err)
	}
	if err := svc.Apply(ctx, testRef, endedEvent("c1", 125, "")); err != nil {
		t.Fatal(err)
	}

	// call.ended replay and a late transcript.final must both be ignored.
	if err := svc.Apply(ctx, testRef, endedEvent("c1", 125, "")); err != nil {
		t.Fatal(err)
	}
	final := endedEvent("c1", 125, "")
	final.Type = voice.EventTranscriptFinal
	if err := svc.Apply(ctx, testRef, final); err != nil {
		t.Fatal(err)
	}

	if len(u.records) != 1 {
		t.Fatalf("usage must be posted once, got %d records", len(u.records))
	}
	if len(a.records) != 1 {
		t.Fatalf("analytics must be recorded once, got %d records", len(a.records))
	}
}

func TestApply_TerminalForUnknownCallDropped(t *testing.T) {
	svc, repo, u, a := newTestService()

	if err := svc.Apply(context.Background(), testRef, endedEvent("ghost", 60, "")); err != nil {
		t.Fatalf("unknown call must be dropped without error, got %v", err)
	}
	if len(repo.Calls) != 0 || len(u.records) != 0 || len(a.records) != 0 {
		t.Fatalf("nothing must be persisted for an unknown call")
	}
}

func TestApply_FailedCallNotBilled(t *testing.T) {
	svc, repo, u, a := newTestService()
	ctx := context.Background()

	if err := svc.Apply(ctx, testRef, startedEvent("c1")); err != nil {
		t.Fatal(err)
	}
	failed := &voice.WebhookEvent{
		Type: voice.EventCallFailed,
		Call: voice.CallEvent{CallID: "c1", AgentExternalID: "asst_1", Status: voice.CallStatusFailed},
	}
	if err := svc.Apply(ctx, testRef, failed); err != nil {
		t.Fatal(err)
	}

	call, _ := repo.FindByExternalID(ctx, "org1", "c1")
	if call.Status != CallStatusFailed {
		t.Fatalf("expected failed, got %s", call.Status)
	}
	if len(u.records) != 0 || len(a.records) != 0 {
		t.Fatalf("failed calls must not be billed or counted")
	}
}

func TestApply_ZeroDurationSkipsUsageButCountsAnalytics(t *testing.T) {
	svc, _, u, a := newTestService()
	ctx := context.Background()

	if err := svc.Apply(ctx, testRef, startedEvent("c1")); err != nil {
		t.Fatal(err)
	}
	if err := svc.Apply(ctx, testRef, endedEvent("c1", 0, "")); err != nil {
		t.Fatal(err)
	}

	if len(u.records) != 0 {
		t.Fatalf("zero-duration calls must not post usage")
	}
	if len(a.records) != 1 {
		t.Fatalf("zero-duration calls still count in analytics")
	}
}

func TestApply_MissingCallIDDropped(t *testing.T) {
	svc, repo, _, _ := newTestService()

	ev := startedEvent("")
	if err := svc.Apply(context.Background(), testRef, ev); err != nil {
		t.Fatalf("missing call id must be dropped without error, got %v", err)
	}
	if len(repo.Calls) != 0 {
		t.Fatalf("nothing must be persisted")
	}
}

func TestApply_InterimEventsIgnored(t *testing.T) {
	svc, repo, u, a := newTestService()

	for _, typ := range []voice.EventType{voice.EventTranscriptPartial, voice.EventFunctionCalled} {
		ev := &voice.WebhookEvent{Type: typ, Call: voice.CallEvent{CallID: "c1", AgentExternalID: "asst_1"}}
		if err := svc.Apply(context.Background(), testRef, ev); err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
	}
	if len(repo.Calls) != 0 || len(u.records) != 0 || len(a.records) != 0 {
		t.Fatalf("interim events must not mutate state")
	}
}

func TestApply_RejectsInvalidInput(t *testing.T) {
	svc, _, _, _ := newTestService()

	if err := svc.Apply(context.Background(), testRef, nil); err != ErrInvalidEvent {
		t.Fatalf("expected ErrInvalidEvent for nil event, got %v", err)
	}
	if err := svc.Apply(context.Background(), agents.Ref{}, startedEvent("c1")); err != ErrInvalidEvent {
		t.Fatalf("expected ErrInvalidEvent for empty ref, got %v", err)
	}
}
