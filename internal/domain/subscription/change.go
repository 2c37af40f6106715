package subscription

import (
	"fmt"
	"strings"

	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// GetChangeType classifies a plan change by tier. Equal tiers on distinct
// plans are lateral moves.
func GetChangeType(currentPlan, newPlan *plan.Plan) types.PlanChangeType {
	switch {
	case newPlan.Tier > currentPlan.Tier:
		return types.PlanChangeTypeUpgrade
	case newPlan.Tier < currentPlan.Tier:
		return types.PlanChangeTypeDowngrade
	default:
		return types.PlanChangeTypeLateral
	}
}

// ValidatePlanChange rejects plan changes that can never succeed: the
// subscription must be active, the target plan must differ from the
// current one and must be purchasable.
func ValidatePlanChange(sub *Subscription, newPlan *plan.Plan) error {
	if !sub.IsActive() {
		return ierr.NewError("subscription is not active").
			WithHint("Cannot change plan for inactive subscription").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
				"status":          sub.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	if sub.PlanID == newPlan.ID {
		return ierr.NewError("target plan equals current plan").
			WithHint("Cannot change to the same plan").
			WithReportableDetails(map[string]any{"plan_id": newPlan.ID}).
			Mark(ierr.ErrInvalidOperation)
	}

	if !newPlan.Active {
		return ierr.NewError("target plan is inactive").
			WithHint("Selected plan is not available").
			WithReportableDetails(map[string]any{"plan_id": newPlan.ID}).
			Mark(ierr.ErrInvalidOperation)
	}

	return nil
}

// ChangeAssessment is the detailed verdict on a proposed plan change.
// Errors make the change invalid; warnings surface consequences the
// customer should confirm.
type ChangeAssessment struct {
	Valid      bool                 `json:"valid"`
	ChangeType types.PlanChangeType `json:"change_type"`
	Warnings   []string             `json:"warnings"`
	Errors     []string             `json:"errors"`
}

// AssessPlanChange compares two plans and reports the change type along
// with warnings for interval changes, large price swings and lost
// features on downgrades.
func AssessPlanChange(currentPlan, newPlan *plan.Plan) *ChangeAssessment {
	assessment := &ChangeAssessment{
		Valid:      true,
		ChangeType: GetChangeType(currentPlan, newPlan),
		Warnings:   make([]string, 0),
		Errors:     make([]string, 0),
	}

	if !newPlan.Active {
		assessment.Errors = append(assessment.Errors, "Selected plan is not currently available")
		assessment.Valid = false
	}

	if currentPlan.Interval != newPlan.Interval {
		assessment.Warnings = append(assessment.Warnings, fmt.Sprintf(
			"Billing interval will change from %sly to %sly",
			currentPlan.Interval, newPlan.Interval,
		))
	}

	if currentPlan.Price > 0 {
		priceChange := decimal.NewFromInt(newPlan.Price - currentPlan.Price).
			Div(decimal.NewFromInt(currentPlan.Price)).
			Mul(decimal.NewFromInt(100))
		if priceChange.Abs().GreaterThan(decimal.NewFromInt(50)) {
			assessment.Warnings = append(assessment.Warnings, fmt.Sprintf(
				"Price will change by %s%%", priceChange.Round(0).String(),
			))
		}
	}

	if assessment.ChangeType == types.PlanChangeTypeDowngrade {
		lost := currentPlan.LostFeatures(newPlan)
		if len(lost) > 0 {
			assessment.Warnings = append(assessment.Warnings, fmt.Sprintf(
				"You will lose access to: %s", strings.Join(lost, ", "),
			))
		}
	}

	return assessment
}
