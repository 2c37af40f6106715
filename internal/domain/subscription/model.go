package subscription

import (
	"time"

	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/types"
)

// Subscription is a customer's enrollment in a plan. Period boundaries and
// the trial end come from the payment provider and are stored in UTC.
type Subscription struct {
	ID                     string                   `db:"id" json:"id"`
	CustomerID             string                   `db:"customer_id" json:"customer_id"`
	PlanID                 string                   `db:"plan_id" json:"plan_id"`
	Status                 types.SubscriptionStatus `db:"status" json:"status"`
	CurrentPeriodStart     time.Time                `db:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd       time.Time                `db:"current_period_end" json:"current_period_end"`
	CancelAtPeriodEnd      bool                     `db:"cancel_at_period_end" json:"cancel_at_period_end"`
	TrialStart             *time.Time               `db:"trial_start" json:"trial_start,omitempty"`
	TrialEnd               *time.Time               `db:"trial_end" json:"trial_end,omitempty"`
	CanceledAt             *time.Time               `db:"canceled_at" json:"canceled_at,omitempty"`
	ProviderCustomerID     string                   `db:"provider_customer_id" json:"provider_customer_id"`
	ProviderSubscriptionID string                   `db:"provider_subscription_id" json:"provider_subscription_id"`
	Metadata               types.Metadata           `db:"metadata" json:"metadata"`

	// Plan is the joined plan record when the caller asked for it. It is
	// not persisted with the subscription.
	Plan *plan.Plan `db:"-" json:"plan,omitempty"`

	types.BaseModel
}
