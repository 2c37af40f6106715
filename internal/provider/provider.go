package provider

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/domain/discount"
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/types"
)

// CreateSubscriptionParams describes a remote subscription to provision.
type CreateSubscriptionParams struct {
	CustomerRef string
	PriceRef    string
	TrialDays   int
	PromoCode   string
	Metadata    types.Metadata
}

// CreateSubscriptionResult is the provider's view of a newly provisioned
// subscription. Period bounds are provider-authoritative.
type CreateSubscriptionResult struct {
	SubscriptionRef    string
	CustomerRef        string
	Status             types.SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	TrialStart         *time.Time
	TrialEnd           *time.Time
}

// UpdateSubscriptionParams swaps a remote subscription onto a new price.
type UpdateSubscriptionParams struct {
	SubscriptionRef   string
	NewPriceRef       string
	ProrationBehavior types.ProrationBehavior
}

// CheckoutSessionParams describes a hosted checkout session to create.
type CheckoutSessionParams struct {
	PriceRef            string
	Quantity            int64
	CustomerRef         string
	CustomerEmail       string
	SuccessURL          string
	CancelURL           string
	TrialDays           int
	AllowPromotionCodes bool
	Metadata            types.Metadata
}

// CheckoutSession is a hosted checkout session the customer is redirected to.
type CheckoutSession struct {
	ID  string
	URL string
}

// PortalSession is a hosted billing-portal session.
type PortalSession struct {
	URL string
}

// Client is the payment provider boundary. Implementations return raw
// provider errors; callers normalize them through internal/payment.
type Client interface {
	CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*CreateSubscriptionResult, error)
	UpdateSubscription(ctx context.Context, params UpdateSubscriptionParams) error
	CancelSubscription(ctx context.Context, subscriptionRef string, atPeriodEnd bool) error
	ReactivateSubscription(ctx context.Context, subscriptionRef string) error
	ListPlans(ctx context.Context) ([]*plan.Plan, error)
	GetPromoCode(ctx context.Context, code string) (*discount.PromoCode, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerRef, returnURL string) (*PortalSession, error)
}
