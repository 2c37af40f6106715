package proration

import (
	"context"
	"testing"

	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlyPlan(id string, price int64, tier int) *plan.Plan {
	return &plan.Plan{
		ID:       id,
		Price:    price,
		Currency: "USD",
		Interval: types.BillingIntervalMonth,
		Tier:     tier,
		Active:   true,
	}
}

func yearlyPlan(id string, price int64, tier int) *plan.Plan {
	p := monthlyPlan(id, price, tier)
	p.Interval = types.BillingIntervalYear
	return p
}

func TestCalculate(t *testing.T) {
	calc := NewCalculator()
	ctx := context.Background()

	t.Run("monthly to yearly", func(t *testing.T) {
		result, err := calc.Calculate(ctx, Params{
			CurrentPlan:   monthlyPlan("plan_monthly", 1000, 1),
			NewPlan:       yearlyPlan("plan_yearly", 10000, 1),
			DaysRemaining: 15,
		})
		require.NoError(t, err)

		// 1000/30 * 15 = 500; 10000/365 * 15 = 410.96 rounded to 411
		assert.Equal(t, int64(500), result.CreditAmount)
		assert.Equal(t, int64(411), result.ChargeAmount)
		assert.Equal(t, int64(-89), result.NetAmount)
		assert.True(t, result.IsUpgrade)
	})

	t.Run("upgrade by tier", func(t *testing.T) {
		result, err := calc.Calculate(ctx, Params{
			CurrentPlan:   monthlyPlan("plan_basic", 900, 1),
			NewPlan:       monthlyPlan("plan_pro", 2900, 2),
			DaysRemaining: 10,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(300), result.CreditAmount)
		assert.Equal(t, int64(967), result.ChargeAmount)
		assert.Equal(t, int64(667), result.NetAmount)
		assert.True(t, result.IsUpgrade)
	})

	t.Run("downgrade", func(t *testing.T) {
		result, err := calc.Calculate(ctx, Params{
			CurrentPlan:   monthlyPlan("plan_pro", 2900, 2),
			NewPlan:       monthlyPlan("plan_basic", 900, 1),
			DaysRemaining: 10,
		})
		require.NoError(t, err)

		assert.False(t, result.IsUpgrade)
		assert.Negative(t, result.NetAmount)
	})

	t.Run("price increase at equal tier counts as upgrade", func(t *testing.T) {
		result, err := calc.Calculate(ctx, Params{
			CurrentPlan:   monthlyPlan("plan_a", 900, 1),
			NewPlan:       monthlyPlan("plan_b", 1200, 1),
			DaysRemaining: 5,
		})
		require.NoError(t, err)
		assert.True(t, result.IsUpgrade)
	})

	t.Run("zero days remaining", func(t *testing.T) {
		result, err := calc.Calculate(ctx, Params{
			CurrentPlan:   monthlyPlan("plan_basic", 900, 1),
			NewPlan:       monthlyPlan("plan_pro", 2900, 2),
			DaysRemaining: 0,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(0), result.CreditAmount)
		assert.Equal(t, int64(0), result.ChargeAmount)
		assert.Equal(t, int64(0), result.NetAmount)
	})

	t.Run("negative days rejected", func(t *testing.T) {
		_, err := calc.Calculate(ctx, Params{
			CurrentPlan:   monthlyPlan("plan_basic", 900, 1),
			NewPlan:       monthlyPlan("plan_pro", 2900, 2),
			DaysRemaining: -1,
		})
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("missing plan rejected", func(t *testing.T) {
		_, err := calc.Calculate(ctx, Params{
			NewPlan:       monthlyPlan("plan_pro", 2900, 2),
			DaysRemaining: 5,
		})
		assert.Error(t, err)
	})
}
