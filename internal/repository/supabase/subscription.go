package supabase

import (
	"context"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	supa "github.com/nedpals/supabase-go"
)

type subscriptionRepository struct {
	client *supa.Client
	logger *logger.Logger
}

// NewSubscriptionRepository creates a subscription repository backed by the
// subscriptions table.
func NewSubscriptionRepository(client *supa.Client, log *logger.Logger) subscription.Repository {
	return &subscriptionRepository{
		client: client,
		logger: log,
	}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	r.logger.Debugw("creating subscription",
		"subscription_id", sub.ID,
		"customer_id", sub.CustomerID,
		"plan_id", sub.PlanID,
	)

	var inserted []subscription.Subscription
	err := r.client.DB.From(subscriptionsTable).Insert(sub).Execute(&inserted)
	if err != nil {
		return wrapStoreError(err, subscriptionsTable)
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	var rows []subscription.Subscription
	err := r.client.DB.From(subscriptionsTable).
		Select("*").
		Eq("id", id).
		Execute(&rows)
	if err != nil {
		return nil, wrapStoreError(err, subscriptionsTable)
	}
	if len(rows) == 0 {
		return nil, ierr.NewError("subscription not found").
			WithHintf("Subscription %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return &rows[0], nil
}

func (r *subscriptionRepository) GetLatestByCustomer(ctx context.Context, customerID string) (*subscription.Subscription, error) {
	subs, err := r.List(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, ierr.NewError("subscription not found").
			WithHintf("Customer %s has no subscription", customerID).
			Mark(ierr.ErrNotFound)
	}

	latest := subs[0]
	for _, sub := range subs[1:] {
		if sub.CreatedAt.After(latest.CreatedAt) {
			latest = sub
		}
	}
	return latest, nil
}

func (r *subscriptionRepository) List(ctx context.Context, customerID string) ([]*subscription.Subscription, error) {
	var rows []subscription.Subscription
	err := r.client.DB.From(subscriptionsTable).
		Select("*").
		Eq("customer_id", customerID).
		Execute(&rows)
	if err != nil {
		return nil, wrapStoreError(err, subscriptionsTable)
	}

	subs := make([]*subscription.Subscription, 0, len(rows))
	for i := range rows {
		subs = append(subs, &rows[i])
	}
	return subs, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	r.logger.Debugw("updating subscription",
		"subscription_id", sub.ID,
		"status", sub.Status,
	)

	var updated []subscription.Subscription
	err := r.client.DB.From(subscriptionsTable).
		Update(sub).
		Eq("id", sub.ID).
		Execute(&updated)
	if err != nil {
		return wrapStoreError(err, subscriptionsTable)
	}
	if len(updated) == 0 {
		return ierr.NewError("subscription not found").
			WithHintf("Subscription %s does not exist", sub.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debugw("deleting subscription", "subscription_id", id)

	err := r.client.DB.From(subscriptionsTable).
		Delete().
		Eq("id", id).
		Execute(nil)
	if err != nil {
		return wrapStoreError(err, subscriptionsTable)
	}
	return nil
}
