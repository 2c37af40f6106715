package testutil

import (
	"context"
	"sync"

	"github.com/billforge/billforge/internal/domain/discount"
	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/provider"
)

// FakeProvider is a scriptable provider.Client for service tests. Errors
// injected per operation are returned until cleared, and call counts are
// tracked so tests can assert retry behavior.
type FakeProvider struct {
	mu sync.Mutex

	CreateResult *provider.CreateSubscriptionResult
	Plans        []*plan.Plan
	PromoCodes   map[string]*discount.PromoCode
	Checkout     *provider.CheckoutSession
	Portal       *provider.PortalSession

	// PortalCustomerRef records the customer reference passed to the most
	// recent CreatePortalSession call.
	PortalCustomerRef string

	errs  map[string]error
	calls map[string]int
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		PromoCodes: make(map[string]*discount.PromoCode),
		errs:       make(map[string]error),
		calls:      make(map[string]int),
	}
}

// FailWith makes the named operation return err on every call until the
// error is cleared with FailWith(op, nil).
func (f *FakeProvider) FailWith(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, op)
		return
	}
	f.errs[op] = err
}

// Calls returns how many times the named operation was invoked.
func (f *FakeProvider) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FakeProvider) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.errs[op]
}

func (f *FakeProvider) CreateSubscription(ctx context.Context, params provider.CreateSubscriptionParams) (*provider.CreateSubscriptionResult, error) {
	if err := f.record("create_subscription"); err != nil {
		return nil, err
	}
	return f.CreateResult, nil
}

func (f *FakeProvider) UpdateSubscription(ctx context.Context, params provider.UpdateSubscriptionParams) error {
	return f.record("update_subscription")
}

func (f *FakeProvider) CancelSubscription(ctx context.Context, subscriptionRef string, atPeriodEnd bool) error {
	return f.record("cancel_subscription")
}

func (f *FakeProvider) ReactivateSubscription(ctx context.Context, subscriptionRef string) error {
	return f.record("reactivate_subscription")
}

func (f *FakeProvider) ListPlans(ctx context.Context) ([]*plan.Plan, error) {
	if err := f.record("list_plans"); err != nil {
		return nil, err
	}
	return f.Plans, nil
}

func (f *FakeProvider) GetPromoCode(ctx context.Context, code string) (*discount.PromoCode, error) {
	if err := f.record("get_promo_code"); err != nil {
		return nil, err
	}
	promo, ok := f.PromoCodes[code]
	if !ok {
		return nil, ierr.NewError("promotion code not found").
			WithHintf("No promotion code matches %s", code).
			Mark(ierr.ErrNotFound)
	}
	return promo, nil
}

func (f *FakeProvider) CreateCheckoutSession(ctx context.Context, params provider.CheckoutSessionParams) (*provider.CheckoutSession, error) {
	if err := f.record("create_checkout_session"); err != nil {
		return nil, err
	}
	return f.Checkout, nil
}

func (f *FakeProvider) CreatePortalSession(ctx context.Context, customerRef, returnURL string) (*provider.PortalSession, error) {
	if err := f.record("create_portal_session"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.PortalCustomerRef = customerRef
	f.mu.Unlock()
	return f.Portal, nil
}
