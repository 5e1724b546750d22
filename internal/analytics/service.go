package analytics

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidRequest = errors.New("analytics: invalid request")

// Service records completed calls into daily rollups and serves range
// summaries for the dashboard.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// RecordCompletedCall accumulates one completed call into the rollup for the
// given day. Every completed call counts as answered; appointment bookings
// add to the appointments_booked counter.
func (s *Service) RecordCompletedCall(ctx context.Context, organizationID string, day time.Time, durationSeconds int, appointmentBooked bool) error {
	if organizationID == "" {
		return ErrInvalidRequest
	}
	if s.repo == nil {
		return errors.New("analytics: repository not configured")
	}
	booked := 0
	if appointmentBooked {
		booked = 1
	}
	return s.repo.Accumulate(ctx, organizationID, DateKey(day), CallDelta{
		TotalCalls:         1,
		AnsweredCalls:      1,
		AppointmentsBooked: booked,
		DurationSeconds:    durationSeconds,
	})
}

// RangeSummary aggregates daily rollups over an inclusive date range.
func (s *Service) RangeSummary(ctx context.Context, organizationID string, from, to time.Time) (Summary, error) {
	if organizationID == "" {
		return Summary{}, ErrInvalidRequest
	}
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return Summary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return Summary{}, errors.New("analytics: repository not configured")
	}

	days, err := s.repo.Range(ctx, organizationID, DateKey(from), DateKey(to))
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		OrganizationID: organizationID,
		From:           DateKey(from),
		To:             DateKey(to),
		Days:           days,
	}
	for _, d := range days {
		out.TotalCalls += d.TotalCalls
		out.AnsweredCalls += d.AnsweredCalls
		out.MissedCalls += d.MissedCalls
		out.AppointmentsBooked += d.AppointmentsBooked
		out.TotalDurationSeconds += d.TotalDurationSeconds
	}
	if out.TotalCalls > 0 {
		out.AvgDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	return out, nil
}
