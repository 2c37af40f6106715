package subscription

import (
	"time"

	"github.com/billforge/billforge/internal/types"
)

// Summary is the renderable digest of a subscription for billing pages.
type Summary struct {
	PlanName          string            `json:"plan_name"`
	Status            string            `json:"status"`
	StatusColor       types.StatusColor `json:"status_color"`
	NextBillingDate   string            `json:"next_billing_date"`
	NextBillingAmount string            `json:"next_billing_amount"`
	DaysUntilBilling  int               `json:"days_until_billing"`
	TrialInfo         *TrialInfo        `json:"trial_info,omitempty"`
	ActionRequired    bool              `json:"action_required"`
}

// TrialInfo is present on a summary only while the trial window is open.
type TrialInfo struct {
	InTrial       bool `json:"in_trial"`
	DaysRemaining int  `json:"days_remaining"`
}

// BuildSummaryAt digests a subscription as of the given instant. A
// missing joined plan renders as an unknown plan with a zero amount
// rather than failing the whole page.
func (s *Subscription) BuildSummaryAt(now time.Time) *Summary {
	statusInfo := types.GetStatusInfo(s.Status)

	planName := "Unknown Plan"
	nextBillingAmount := "$0.00"
	if s.Plan != nil {
		planName = s.Plan.Name
		nextBillingAmount = types.FormatAmount(s.Plan.Price, s.Plan.Currency)
	}

	summary := &Summary{
		PlanName:          planName,
		Status:            statusInfo.Label,
		StatusColor:       statusInfo.Color,
		NextBillingDate:   s.CurrentPeriodEnd.Format("Jan 2, 2006"),
		NextBillingAmount: nextBillingAmount,
		DaysUntilBilling:  s.DaysUntilRenewalAt(now),
		ActionRequired:    statusInfo.ActionRequired,
	}

	if s.IsInTrialAt(now) {
		summary.TrialInfo = &TrialInfo{
			InTrial:       true,
			DaysRemaining: s.TrialDaysRemainingAt(now),
		}
	}

	return summary
}
