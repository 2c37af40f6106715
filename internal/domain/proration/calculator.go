package proration

import (
	"context"

	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

const (
	daysPerMonth = 30
	daysPerYear  = 365
)

// Calculator computes the credit and charge for a mid-period plan change.
type Calculator interface {
	Calculate(ctx context.Context, params Params) (*Result, error)
}

type dayBasedCalculator struct{}

// NewCalculator returns a day-based proration calculator. Months are
// normalized to 30 days and years to 365 regardless of the calendar.
func NewCalculator() Calculator {
	return &dayBasedCalculator{}
}

func (c *dayBasedCalculator) Calculate(ctx context.Context, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	days := decimal.NewFromInt(int64(params.DaysRemaining))
	creditAmount := dailyRate(params.CurrentPlan).Mul(days).Round(0).IntPart()
	chargeAmount := dailyRate(params.NewPlan).Mul(days).Round(0).IntPart()

	isUpgrade := params.NewPlan.Tier > params.CurrentPlan.Tier ||
		params.NewPlan.Price > params.CurrentPlan.Price

	return &Result{
		CreditAmount: creditAmount,
		ChargeAmount: chargeAmount,
		NetAmount:    chargeAmount - creditAmount,
		IsUpgrade:    isUpgrade,
	}, nil
}

func dailyRate(p *plan.Plan) decimal.Decimal {
	periodDays := int64(daysPerYear)
	if p.Interval == types.BillingIntervalMonth {
		periodDays = daysPerMonth
	}
	return decimal.NewFromInt(p.Price).Div(decimal.NewFromInt(periodDays))
}
