package plans

import (
	"context"
	"errors"
	"time"
)

// Plan is a catalog entry for a subscription tier. Amounts are expressed in
// minor units (cents) using int64.
//
// MinutesIncluded is the per-billing-period allowance the usage accounting
// draws down; MaxAgents nil means unlimited.
type Plan struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	DisplayName string `json:"display_name" db:"display_name"`

	PriceCents      int64 `json:"price_cents" db:"price_cents"`
	MinutesIncluded int   `json:"minutes_included" db:"minutes_included"`
	MaxPhoneNumbers int   `json:"max_phone_numbers" db:"max_phone_numbers"`
	MaxAgents       *int  `json:"max_agents,omitempty" db:"max_agents"`

	IsActive bool `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

var ErrNotFound = errors.New("plans: not found")

type Repository interface {
	FindByID(ctx context.Context, planID string) (Plan, error)
}
