package stripe

import (
	"context"

	"github.com/billforge/billforge/internal/provider"
	"github.com/stripe/stripe-go/v82"
)

// CreateCheckoutSession creates a hosted checkout session for a
// subscription purchase.
func (c *Client) CreateCheckoutSession(ctx context.Context, params provider.CheckoutSessionParams) (*provider.CheckoutSession, error) {
	quantity := params.Quantity
	if quantity == 0 {
		quantity = 1
	}

	createParams := &stripe.CheckoutSessionCreateParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripe.String(params.PriceRef),
				Quantity: stripe.Int64(quantity),
			},
		},
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	if params.CustomerRef != "" {
		createParams.Customer = stripe.String(params.CustomerRef)
	}
	if params.CustomerEmail != "" {
		createParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	if params.AllowPromotionCodes {
		createParams.AllowPromotionCodes = stripe.Bool(true)
	}
	if params.TrialDays > 0 || len(params.Metadata) > 0 {
		subscriptionData := &stripe.CheckoutSessionCreateSubscriptionDataParams{}
		if params.TrialDays > 0 {
			subscriptionData.TrialPeriodDays = stripe.Int64(int64(params.TrialDays))
		}
		if len(params.Metadata) > 0 {
			subscriptionData.Metadata = map[string]string(params.Metadata)
		}
		createParams.SubscriptionData = subscriptionData
	}

	session, err := c.client.V1CheckoutSessions.Create(ctx, createParams)
	if err != nil {
		c.logger.Errorw("failed to create checkout session",
			"error", err,
			"price_ref", params.PriceRef,
		)
		return nil, err
	}

	return &provider.CheckoutSession{
		ID:  session.ID,
		URL: session.URL,
	}, nil
}

// CreatePortalSession creates a hosted billing-portal session for the
// customer to manage payment methods and invoices.
func (c *Client) CreatePortalSession(ctx context.Context, customerRef, returnURL string) (*provider.PortalSession, error) {
	session, err := c.client.V1BillingPortalSessions.Create(ctx, &stripe.BillingPortalSessionCreateParams{
		Customer:  stripe.String(customerRef),
		ReturnURL: stripe.String(returnURL),
	})
	if err != nil {
		c.logger.Errorw("failed to create billing portal session",
			"error", err,
			"customer_ref", customerRef,
		)
		return nil, err
	}

	return &provider.PortalSession{URL: session.URL}, nil
}
