package accounts

import (
	"context"
	"errors"
	"time"
)

type SubscriptionStatus string

const (
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionLocked   SubscriptionStatus = "locked"
)

type LockReason string

const (
	LockTrialExpired         LockReason = "trial_expired"
	LockMinutesExhausted     LockReason = "minutes_exhausted"
	LockSubscriptionCanceled LockReason = "subscription_canceled"
	LockAccountLocked        LockReason = "account_locked"
)

// Organization is the billing and data-isolation unit. All calls, agents and
// analytics are scoped to one.
type Organization struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	PlanID             string             `json:"plan_id,omitempty" db:"plan_id"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status" db:"subscription_status"`

	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty" db:"trial_ends_at"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty" db:"current_period_start"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty" db:"current_period_end"`

	// MinutesUsed is the projection maintained by the usage ledger for the
	// current billing period.
	MinutesUsed int `json:"minutes_used" db:"minutes_used"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Status is derived per request from the organization row and its plan; it
// is never stored.
type Status struct {
	OrganizationID     string             `json:"organization_id"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	PlanName           string             `json:"plan_name,omitempty"`

	MinutesUsed      int `json:"minutes_used"`
	MinutesIncluded  int `json:"minutes_included"`
	MinutesRemaining int `json:"minutes_remaining"`

	IsTrial            bool       `json:"is_trial"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	TrialDaysRemaining int        `json:"trial_days_remaining"`

	CanMakeCalls bool       `json:"can_make_calls"`
	IsLocked     bool       `json:"is_locked"`
	LockReason   LockReason `json:"lock_reason,omitempty"`

	PeriodEnd *time.Time `json:"period_end,omitempty"`
}

var ErrNotFound = errors.New("accounts: not found")

type Repository interface {
	FindOrganization(ctx context.Context, organizationID string) (Organization, error)
}
