package types

import (
	"fmt"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/samber/lo"
)

// BillingInterval is the unit of a plan's billing cycle.
type BillingInterval string

const (
	BillingIntervalDay   BillingInterval = "day"
	BillingIntervalWeek  BillingInterval = "week"
	BillingIntervalMonth BillingInterval = "month"
	BillingIntervalYear  BillingInterval = "year"
)

func (i BillingInterval) String() string {
	return string(i)
}

func (i BillingInterval) Validate() error {
	allowed := []BillingInterval{
		BillingIntervalDay,
		BillingIntervalWeek,
		BillingIntervalMonth,
		BillingIntervalYear,
	}
	if !lo.Contains(allowed, i) {
		return ierr.NewError("invalid billing interval").
			WithHintf("Billing interval %s is not valid", i).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Description renders a billing cadence for display, e.g. "Monthly" or
// "Every 3 months".
func (i BillingInterval) Description(count int) string {
	if count <= 1 {
		switch i {
		case BillingIntervalDay:
			return "Daily"
		case BillingIntervalWeek:
			return "Weekly"
		case BillingIntervalMonth:
			return "Monthly"
		case BillingIntervalYear:
			return "Yearly"
		}
	}
	return fmt.Sprintf("Every %d %ss", count, i)
}

// PlanChangeType classifies a plan transition by tier ordering.
type PlanChangeType string

const (
	PlanChangeTypeUpgrade   PlanChangeType = "upgrade"
	PlanChangeTypeDowngrade PlanChangeType = "downgrade"
	PlanChangeTypeLateral   PlanChangeType = "lateral"
)

func (t PlanChangeType) String() string {
	return string(t)
}

// ProrationBehavior controls how the provider settles a mid-cycle plan change.
type ProrationBehavior string

const (
	ProrationBehaviorCreateProrations ProrationBehavior = "create_prorations"
	ProrationBehaviorNone             ProrationBehavior = "none"
	ProrationBehaviorAlwaysInvoice    ProrationBehavior = "always_invoice"
)

func (p ProrationBehavior) Validate() error {
	allowed := []ProrationBehavior{
		ProrationBehaviorCreateProrations,
		ProrationBehaviorNone,
		ProrationBehaviorAlwaysInvoice,
	}
	if !lo.Contains(allowed, p) {
		return ierr.NewError("invalid proration behavior").
			WithHintf("Proration behavior %s is not valid", p).
			Mark(ierr.ErrValidation)
	}
	return nil
}
