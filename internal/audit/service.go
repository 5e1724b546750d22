package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for delivery records.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, d Delivery) error
}

// Service records webhook delivery outcomes.
//
// IMPORTANT:
// - Audit is internal-only; these records are not exposed to tenant users.
// - Callers should treat recording as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidDelivery = errors.New("audit: invalid delivery")

func (s *Service) Record(ctx context.Context, d Delivery) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if d.Provider == "" || d.Disposition == "" {
		return ErrInvalidDelivery
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, d)
}
