package stripe

import (
	"context"
	"time"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/provider"
	"github.com/billforge/billforge/internal/types"
	"github.com/stripe/stripe-go/v82"
)

// CreateSubscription provisions a subscription on Stripe and returns the
// provider-authoritative period bounds.
func (c *Client) CreateSubscription(ctx context.Context, params provider.CreateSubscriptionParams) (*provider.CreateSubscriptionResult, error) {
	createParams := &stripe.SubscriptionCreateParams{
		Customer: stripe.String(params.CustomerRef),
		Items: []*stripe.SubscriptionCreateItemParams{
			{Price: stripe.String(params.PriceRef)},
		},
	}
	if params.TrialDays > 0 {
		createParams.TrialPeriodDays = stripe.Int64(int64(params.TrialDays))
	}
	if params.PromoCode != "" {
		createParams.Discounts = []*stripe.SubscriptionCreateDiscountParams{
			{PromotionCode: stripe.String(params.PromoCode)},
		}
	}
	if len(params.Metadata) > 0 {
		createParams.Metadata = map[string]string(params.Metadata)
	}

	sub, err := c.client.V1Subscriptions.Create(ctx, createParams)
	if err != nil {
		c.logger.Errorw("failed to create subscription on Stripe",
			"error", err,
			"customer_ref", params.CustomerRef,
			"price_ref", params.PriceRef,
		)
		return nil, err
	}

	return mapSubscriptionResult(sub), nil
}

// UpdateSubscription swaps the subscription's single item onto a new price.
func (c *Client) UpdateSubscription(ctx context.Context, params provider.UpdateSubscriptionParams) error {
	sub, err := c.client.V1Subscriptions.Retrieve(ctx, params.SubscriptionRef, &stripe.SubscriptionRetrieveParams{})
	if err != nil {
		return err
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		c.logger.Errorw("subscription has no items to update",
			"subscription_ref", params.SubscriptionRef,
		)
		return ierr.NewError("subscription has no items").
			WithHint("The remote subscription has no price items to update").
			WithReportableDetails(map[string]any{
				"subscription_ref": params.SubscriptionRef,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	prorationBehavior := params.ProrationBehavior
	if prorationBehavior == "" {
		prorationBehavior = types.ProrationBehaviorCreateProrations
	}

	updateParams := &stripe.SubscriptionUpdateParams{
		Items: []*stripe.SubscriptionUpdateItemParams{
			{
				ID:    stripe.String(sub.Items.Data[0].ID),
				Price: stripe.String(params.NewPriceRef),
			},
		},
		ProrationBehavior: stripe.String(string(prorationBehavior)),
	}

	_, err = c.client.V1Subscriptions.Update(ctx, params.SubscriptionRef, updateParams)
	if err != nil {
		c.logger.Errorw("failed to update subscription on Stripe",
			"error", err,
			"subscription_ref", params.SubscriptionRef,
			"new_price_ref", params.NewPriceRef,
		)
	}
	return err
}

// CancelSubscription cancels immediately or schedules cancellation at the
// end of the current period.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionRef string, atPeriodEnd bool) error {
	if atPeriodEnd {
		_, err := c.client.V1Subscriptions.Update(ctx, subscriptionRef, &stripe.SubscriptionUpdateParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		})
		return err
	}

	_, err := c.client.V1Subscriptions.Cancel(ctx, subscriptionRef, &stripe.SubscriptionCancelParams{})
	return err
}

// ReactivateSubscription clears a scheduled cancellation.
func (c *Client) ReactivateSubscription(ctx context.Context, subscriptionRef string) error {
	_, err := c.client.V1Subscriptions.Update(ctx, subscriptionRef, &stripe.SubscriptionUpdateParams{
		CancelAtPeriodEnd: stripe.Bool(false),
	})
	return err
}

func mapSubscriptionResult(sub *stripe.Subscription) *provider.CreateSubscriptionResult {
	result := &provider.CreateSubscriptionResult{
		SubscriptionRef: sub.ID,
		Status:          types.SubscriptionStatus(sub.Status),
	}
	if sub.Customer != nil {
		result.CustomerRef = sub.Customer.ID
	}

	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		result.CurrentPeriodStart = time.Unix(item.CurrentPeriodStart, 0).UTC()
		result.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
	} else if sub.StartDate != 0 {
		result.CurrentPeriodStart = time.Unix(sub.StartDate, 0).UTC()
	}

	if sub.TrialStart != 0 {
		trialStart := time.Unix(sub.TrialStart, 0).UTC()
		result.TrialStart = &trialStart
	}
	if sub.TrialEnd != 0 {
		trialEnd := time.Unix(sub.TrialEnd, 0).UTC()
		result.TrialEnd = &trialEnd
	}

	return result
}
