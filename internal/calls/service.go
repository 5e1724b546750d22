package calls

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ringr-platform/internal/agents"
	"ringr-platform/internal/voice"
	"ringr-platform/pkg/logger"
)

// UsageRecorder posts billable minutes for a completed call.
// Implementations must apply at most once per (organization, call); the
// returned bool reports whether this invocation actually posted usage.
type UsageRecorder interface {
	RecordCallUsage(ctx context.Context, organizationID, callID, externalCallID string, durationSeconds int) (bool, error)
}

// AnalyticsRecorder accumulates a completed call into the daily rollup.
// Implementations must use an atomic accumulate-or-create write.
type AnalyticsRecorder interface {
	RecordCompletedCall(ctx context.Context, organizationID string, day time.Time, durationSeconds int, appointmentBooked bool) error
}

var ErrInvalidEvent = errors.New("calls: invalid event")

// Service applies canonical webhook events to persisted call state.
//
// State machine per (organization_id, external_call_id):
//   (absent)     -> in_progress  on call.started
//   in_progress  -> completed    on call.ended / transcript.final
//   in_progress  -> failed       on call.failed
//
// Terminal states are never re-entered; replayed terminal events are no-ops
// and do not re-apply usage or analytics. Failed calls are not billed.
type Service struct {
	repo      Repository
	usage     UsageRecorder
	analytics AnalyticsRecorder

	// clock supplies "today" for analytics attribution (server clock date,
	// not call date). Injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository, usage UsageRecorder, analytics AnalyticsRecorder) *Service {
	return &Service{repo: repo, usage: usage, analytics: analytics, clock: time.Now}
}

// Apply dispatches one canonical event for an attributed tenant.
//
// Events with an empty external call id are dropped (there is nothing to key
// state on); that is a logged warning, not an error, so the provider is not
// asked to retry.
func (s *Service) Apply(ctx context.Context, ref agents.Ref, ev *voice.WebhookEvent) error {
	if ev == nil || ref.OrganizationID == "" {
		return ErrInvalidEvent
	}
	log := logger.From(ctx)

	if ev.Call.CallID == "" {
		log.Warn("webhook event missing call id, dropping", "event_type", string(ev.Type))
		return nil
	}

	switch ev.Type {
	case voice.EventCallStarted:
		return s.handleStarted(ctx, ref, ev.Call)
	case voice.EventCallEnded, voice.EventTranscriptFinal:
		return s.handleCompleted(ctx, ref.OrganizationID, ev.Call)
	case voice.EventCallFailed:
		return s.handleFailed(ctx, ref.OrganizationID, ev.Call)
	case voice.EventTranscriptPartial, voice.EventFunctionCalled:
		// Interim events carry no accounting effect.
		return nil
	default:
		log.Warn("unhandled canonical event type", "event_type", string(ev.Type))
		return nil
	}
}

func (s *Service) handleStarted(ctx context.Context, ref agents.Ref, ev voice.CallEvent) error {
	metadata, err := json.Marshal(ev.Metadata)
	if err != nil {
		metadata = []byte(`{}`)
	}
	created, err := s.repo.Create(ctx, Call{
		OrganizationID: ref.OrganizationID,
		AgentID:        ref.AgentID,
		ExternalCallID: ev.CallID,
		Direction:      CallDirection(ev.Direction),
		Status:         CallStatusInProgress,
		CallerPhone:    ev.CallerPhone,
		CallerName:     ev.CallerName,
		StartedAt:      ev.StartedAt,
		Metadata:       metadata,
	})
	if err != nil {
		return fmt.Errorf("create call: %w", err)
	}
	if !created {
		logger.From(ctx).Warn("duplicate call.started delivery, skipping insert",
			"organization_id", ref.OrganizationID, "external_call_id", ev.CallID)
	}
	return nil
}

func (s *Service) handleCompleted(ctx context.Context, organizationID string, ev voice.CallEvent) error {
	log := logger.From(ctx)

	call, err := s.repo.FindByExternalID(ctx, organizationID, ev.CallID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Cannot update what was never started; acceptable loss.
			log.Warn("terminal event for unknown call, dropping",
				"organization_id", organizationID, "external_call_id", ev.CallID)
			return nil
		}
		return fmt.Errorf("find call: %w", err)
	}

	applied, err := s.repo.CompleteIfInProgress(ctx, call.ID, CompletionUpdate{
		EndedAt:         ev.EndedAt,
		DurationSeconds: ev.DurationSeconds,
		RecordingURL:    ev.RecordingURL,
		Summary:         ev.Summary,
		Sentiment:       string(ev.Sentiment),
		Outcome:         ev.Outcome,
	})
	if err != nil {
		return err
	}
	if !applied {
		// Already terminal: call.ended and transcript.final both arrived, or
		// the provider replayed the event. Usage and analytics stay as-is.
		log.Info("terminal event replay, no-op",
			"organization_id", organizationID, "external_call_id", ev.CallID)
		return nil
	}

	if len(ev.Transcript) > 0 {
		messages := make([]TranscriptMessage, 0, len(ev.Transcript))
		for _, m := range ev.Transcript {
			messages = append(messages, TranscriptMessage{
				Role:      string(m.Role),
				Content:   m.Content,
				Timestamp: m.Timestamp,
			})
		}
		if err := s.repo.UpsertTranscript(ctx, call.ID, messages); err != nil {
			return fmt.Errorf("upsert transcript: %w", err)
		}
	}

	duration := 0
	if ev.DurationSeconds != nil {
		duration = *ev.DurationSeconds
	}

	if duration > 0 && s.usage != nil {
		posted, err := s.usage.RecordCallUsage(ctx, organizationID, call.ID, ev.CallID, duration)
		if err != nil {
			return fmt.Errorf("record usage: %w", err)
		}
		if !posted {
			log.Info("usage already posted for call", "external_call_id", ev.CallID)
		}
	}

	if s.analytics != nil {
		booked := ev.Outcome == OutcomeAppointmentBooked
		if err := s.analytics.RecordCompletedCall(ctx, organizationID, s.clock().UTC(), duration, booked); err != nil {
			return fmt.Errorf("record analytics: %w", err)
		}
	}
	return nil
}

func (s *Service) handleFailed(ctx context.Context, organizationID string, ev voice.CallEvent) error {
	call, err := s.repo.FindByExternalID(ctx, organizationID, ev.CallID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.From(ctx).Warn("call.failed for unknown call, dropping",
				"organization_id", organizationID, "external_call_id", ev.CallID)
			return nil
		}
		return fmt.Errorf("find call: %w", err)
	}
	// Failed calls carry no usage or analytics mutations.
	if _, err := s.repo.MarkFailedIfInProgress(ctx, call.ID); err != nil {
		return err
	}
	return nil
}
