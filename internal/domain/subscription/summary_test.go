package subscription

import (
	"testing"
	"time"

	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSummaryAt(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("active subscription with plan", func(t *testing.T) {
		sub := &Subscription{
			Status:           types.SubscriptionStatusActive,
			CurrentPeriodEnd: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			Plan:             proPlan(),
		}

		summary := sub.BuildSummaryAt(now)
		assert.Equal(t, "Pro", summary.PlanName)
		assert.Equal(t, "Active", summary.Status)
		assert.Equal(t, types.StatusColorGreen, summary.StatusColor)
		assert.Equal(t, "Jul 1, 2024", summary.NextBillingDate)
		assert.Equal(t, "$29.00", summary.NextBillingAmount)
		assert.Equal(t, 16, summary.DaysUntilBilling)
		assert.Nil(t, summary.TrialInfo)
		assert.False(t, summary.ActionRequired)
	})

	t.Run("missing plan renders placeholders", func(t *testing.T) {
		sub := &Subscription{
			Status:           types.SubscriptionStatusPastDue,
			CurrentPeriodEnd: now.Add(24 * time.Hour),
		}

		summary := sub.BuildSummaryAt(now)
		assert.Equal(t, "Unknown Plan", summary.PlanName)
		assert.Equal(t, "$0.00", summary.NextBillingAmount)
		assert.True(t, summary.ActionRequired)
	})

	t.Run("trialing subscription includes trial info", func(t *testing.T) {
		sub := &Subscription{
			Status:           types.SubscriptionStatusTrialing,
			CurrentPeriodEnd: now.Add(14 * 24 * time.Hour),
			TrialEnd:         lo.ToPtr(now.Add(7 * 24 * time.Hour)),
			Plan:             basicPlan(),
		}

		summary := sub.BuildSummaryAt(now)
		require.NotNil(t, summary.TrialInfo)
		assert.True(t, summary.TrialInfo.InTrial)
		assert.Equal(t, 7, summary.TrialInfo.DaysRemaining)
	})
}
