package stripe

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/domain/discount"
	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

// ListPlans fetches the recurring price catalog from Stripe and maps each
// price to a plan. Tier and features come from price metadata.
func (c *Client) ListPlans(ctx context.Context) ([]*plan.Plan, error) {
	params := &stripe.PriceListParams{
		Active: stripe.Bool(true),
		Type:   stripe.String("recurring"),
	}
	params.AddExpand("data.product")

	plans := make([]*plan.Plan, 0)
	for price, err := range c.client.V1Prices.List(ctx, params) {
		if err != nil {
			c.logger.Errorw("failed to list prices from Stripe", "error", err)
			return nil, err
		}
		if price.Recurring == nil {
			continue
		}
		plans = append(plans, mapPrice(price))
	}

	return plans, nil
}

func mapPrice(price *stripe.Price) *plan.Plan {
	p := &plan.Plan{
		ID:              price.ID,
		Name:            price.Nickname,
		Price:           price.UnitAmount,
		Currency:        strings.ToUpper(string(price.Currency)),
		Interval:        types.BillingInterval(price.Recurring.Interval),
		IntervalCount:   int(price.Recurring.IntervalCount),
		Active:          price.Active,
		ProviderPriceID: price.ID,
		Metadata:        types.Metadata(price.Metadata),
	}

	if price.Product != nil && price.Product.Name != "" {
		p.Name = price.Product.Name
	}
	if tier, err := strconv.Atoi(price.Metadata["tier"]); err == nil {
		p.Tier = tier
	}
	if features := price.Metadata["features"]; features != "" {
		p.Features = strings.Split(features, ",")
	}
	if trialDays, err := strconv.Atoi(price.Metadata["trial_period_days"]); err == nil {
		p.TrialPeriodDays = trialDays
	}

	return p
}

// GetPromoCode looks up an active promotion code by its customer-facing
// code string.
func (c *Client) GetPromoCode(ctx context.Context, code string) (*discount.PromoCode, error) {
	params := &stripe.PromotionCodeListParams{
		Code: stripe.String(code),
	}

	for pc, err := range c.client.V1PromotionCodes.List(ctx, params) {
		if err != nil {
			c.logger.Errorw("failed to look up promotion code", "error", err, "code", code)
			return nil, err
		}
		return mapPromotionCode(pc), nil
	}

	return nil, ierr.NewError("promotion code not found").
		WithHintf("Promo code %s does not exist", code).
		Mark(ierr.ErrNotFound)
}

func mapPromotionCode(pc *stripe.PromotionCode) *discount.PromoCode {
	promo := &discount.PromoCode{
		ID:            pc.ID,
		Code:          pc.Code,
		Valid:         pc.Active,
		TimesRedeemed: int(pc.TimesRedeemed),
	}

	if pc.MaxRedemptions != 0 {
		promo.MaxRedemptions = int(pc.MaxRedemptions)
	}
	if pc.ExpiresAt != 0 {
		expires := time.Unix(pc.ExpiresAt, 0).UTC()
		promo.RedeemBy = &expires
	}

	if coupon := pc.Coupon; coupon != nil {
		promo.Valid = promo.Valid && coupon.Valid
		if coupon.PercentOff > 0 {
			promo.DiscountType = types.DiscountTypePercentage
			promo.DiscountValue = decimal.NewFromFloat(coupon.PercentOff)
		} else {
			promo.DiscountType = types.DiscountTypeFixed
			promo.DiscountValue = decimal.NewFromInt(coupon.AmountOff)
			promo.Currency = strings.ToUpper(string(coupon.Currency))
		}
	}

	return promo
}
