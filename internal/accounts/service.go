package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ringr-platform/internal/plans"
)

// Service derives account status: whether an organization may currently
// accept calls, and why it is locked if not.
//
// Lock precedence (first match wins):
//  1. subscription explicitly locked -> account_locked
//  2. subscription canceled          -> subscription_canceled
//  3. trial expired                  -> trial_expired
//  4. minute allowance exhausted     -> minutes_exhausted
//
// past_due keeps calls flowing; dunning is handled by billing, not by
// dropping the tenant's phone line.
type Service struct {
	repo  Repository
	plans plans.Repository

	clock func() time.Time
}

func NewService(repo Repository, planRepo plans.Repository) *Service {
	return &Service{repo: repo, plans: planRepo, clock: time.Now}
}

func (s *Service) Status(ctx context.Context, organizationID string) (Status, error) {
	if organizationID == "" {
		return Status{}, ErrNotFound
	}
	org, err := s.repo.FindOrganization(ctx, organizationID)
	if err != nil {
		return Status{}, fmt.Errorf("find organization: %w", err)
	}

	out := Status{
		OrganizationID:     org.ID,
		SubscriptionStatus: org.SubscriptionStatus,
		MinutesUsed:        org.MinutesUsed,
		TrialEndsAt:        org.TrialEndsAt,
		PeriodEnd:          org.CurrentPeriodEnd,
		IsTrial:            org.SubscriptionStatus == SubscriptionTrialing,
	}

	if org.PlanID != "" && s.plans != nil {
		plan, err := s.plans.FindByID(ctx, org.PlanID)
		if err != nil && !errors.Is(err, plans.ErrNotFound) {
			return Status{}, fmt.Errorf("find plan: %w", err)
		}
		if err == nil {
			out.PlanName = plan.DisplayName
			out.MinutesIncluded = plan.MinutesIncluded
		}
	}

	out.MinutesRemaining = out.MinutesIncluded - out.MinutesUsed
	if out.MinutesRemaining < 0 {
		out.MinutesRemaining = 0
	}

	now := s.clock().UTC()
	if out.IsTrial && org.TrialEndsAt != nil {
		days := int(org.TrialEndsAt.Sub(now).Hours() / 24)
		if days < 0 {
			days = 0
		}
		out.TrialDaysRemaining = days
	}

	switch {
	case org.SubscriptionStatus == SubscriptionLocked:
		out.LockReason = LockAccountLocked
	case org.SubscriptionStatus == SubscriptionCanceled:
		out.LockReason = LockSubscriptionCanceled
	case out.IsTrial && org.TrialEndsAt != nil && now.After(*org.TrialEndsAt):
		out.LockReason = LockTrialExpired
	case out.MinutesIncluded > 0 && org.MinutesUsed >= out.MinutesIncluded:
		out.LockReason = LockMinutesExhausted
	}

	out.IsLocked = out.LockReason != ""
	out.CanMakeCalls = !out.IsLocked
	return out, nil
}

// CanMakeCalls is the call-admission hook consulted by the webhook pipeline
// on call.started.
func (s *Service) CanMakeCalls(ctx context.Context, organizationID string) (bool, error) {
	st, err := s.Status(ctx, organizationID)
	if err != nil {
		return false, err
	}
	return st.CanMakeCalls, nil
}
