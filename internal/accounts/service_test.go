package accounts

import (
	"context"
	"testing"
	"time"

	"ringr-platform/internal/plans"
)

func newTestService(org Organization, plan *plans.Plan, now time.Time) *Service {
	orgs := NewMemoryRepo()
	orgs.Add(org)
	planRepo := plans.NewMemoryRepo()
	if plan != nil {
		planRepo.Add(*plan)
	}
	svc := NewService(orgs, planRepo)
	svc.clock = func() time.Time { return now }
	return svc
}

var starterPlan = plans.Plan{
	ID:              "plan_starter",
	Name:            "starter",
	DisplayName:     "Starter",
	MinutesIncluded: 100,
	IsActive:        true,
}

func TestStatus_ActiveWithinAllowance(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(Organization{
		ID:                 "org1",
		PlanID:             "plan_starter",
		SubscriptionStatus: SubscriptionActive,
		MinutesUsed:        40,
	}, &starterPlan, now)

	st, err := svc.Status(context.Background(), "org1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !st.CanMakeCalls || st.IsLocked {
		t.Fatalf("expected unlocked account: %+v", st)
	}
	if st.MinutesRemaining != 60 {
		t.Fatalf("expected 60 minutes remaining, got %d", st.MinutesRemaining)
	}
	if st.PlanName != "Starter" {
		t.Fatalf("expected plan name, got %q", st.PlanName)
	}
}

func TestStatus_MinutesExhausted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(Organization{
		ID:                 "org1",
		PlanID:             "plan_starter",
		SubscriptionStatus: SubscriptionActive,
		MinutesUsed:        100,
	}, &starterPlan, now)

	st, err := svc.Status(context.Background(), "org1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if st.CanMakeCalls {
		t.Fatalf("expected locked account")
	}
	if st.LockReason != LockMinutesExhausted {
		t.Fatalf("expected minutes_exhausted, got %q", st.LockReason)
	}
	if st.MinutesRemaining != 0 {
		t.Fatalf("expected 0 remaining, got %d", st.MinutesRemaining)
	}
}

func TestStatus_TrialExpired(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	trialEnd := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	svc := newTestService(Organization{
		ID:                 "org1",
		PlanID:             "plan_starter",
		SubscriptionStatus: SubscriptionTrialing,
		TrialEndsAt:        &trialEnd,
		MinutesUsed:        5,
	}, &starterPlan, now)

	st, err := svc.Status(context.Background(), "org1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if st.LockReason != LockTrialExpired {
		t.Fatalf("expected trial_expired, got %q", st.LockReason)
	}
	if st.TrialDaysRemaining != 0 {
		t.Fatalf("expected 0 trial days, got %d", st.TrialDaysRemaining)
	}
}

func TestStatus_TrialActiveCountsDays(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	trialEnd := now.AddDate(0, 0, 7)
	svc := newTestService(Organization{
		ID:                 "org1",
		PlanID:             "plan_starter",
		SubscriptionStatus: SubscriptionTrialing,
		TrialEndsAt:        &trialEnd,
	}, &starterPlan, now)

	st, err := svc.Status(context.Background(), "org1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !st.IsTrial || !st.CanMakeCalls {
		t.Fatalf("expected active trial: %+v", st)
	}
	if st.TrialDaysRemaining != 7 {
		t.Fatalf("expected 7 trial days, got %d", st.TrialDaysRemaining)
	}
}

func TestStatus_LockReasonPrecedence(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	trialEnd := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status SubscriptionStatus
		want   LockReason
	}{
		{"locked beats everything", SubscriptionLocked, LockAccountLocked},
		{"canceled beats trial", SubscriptionCanceled, LockSubscriptionCanceled},
		{"expired trial beats minutes", SubscriptionTrialing, LockTrialExpired},
	}
	for _, tt := range tests {
		svc := newTestService(Organization{
			ID:                 "org1",
			PlanID:             "plan_starter",
			SubscriptionStatus: tt.status,
			TrialEndsAt:        &trialEnd,
			MinutesUsed:        500, // also over the allowance
		}, &starterPlan, now)

		st, err := svc.Status(context.Background(), "org1")
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", tt.name, err)
		}
		if st.LockReason != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.name, tt.want, st.LockReason)
		}
	}
}

func TestCanMakeCalls_UnknownOrganization(t *testing.T) {
	svc := NewService(NewMemoryRepo(), plans.NewMemoryRepo())
	if _, err := svc.CanMakeCalls(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for unknown organization")
	}
}
