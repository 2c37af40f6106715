package proration

import (
	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
)

// Params describes a mid-period plan change to prorate. DaysRemaining is
// the whole days left in the current billing period.
type Params struct {
	CurrentPlan   *plan.Plan `json:"current_plan"`
	NewPlan       *plan.Plan `json:"new_plan"`
	DaysRemaining int        `json:"days_remaining"`
}

func (p Params) Validate() error {
	if p.CurrentPlan == nil || p.NewPlan == nil {
		return ierr.NewError("missing plan").
			WithHint("Both current and new plans are required for proration").
			Mark(ierr.ErrValidation)
	}
	if p.DaysRemaining < 0 {
		return ierr.NewError("negative days remaining").
			WithHint("Days remaining cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Result is a proration outcome in minor currency units. A positive net
// amount is owed by the customer; a negative one is credited back.
type Result struct {
	CreditAmount int64 `json:"credit_amount"`
	ChargeAmount int64 `json:"charge_amount"`
	NetAmount    int64 `json:"net_amount"`
	IsUpgrade    bool  `json:"is_upgrade"`
}
