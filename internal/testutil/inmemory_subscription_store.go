package testutil

import (
	"context"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
}

// NewInMemorySubscriptionStore creates a new in-memory subscription store
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			WithHint("Subscription data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, sub.ID, sub)
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("subscription not found").
			WithHintf("Subscription %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return sub, nil
}

func (s *InMemorySubscriptionStore) GetLatestByCustomer(ctx context.Context, customerID string) (*subscription.Subscription, error) {
	subs, err := s.List(ctx, customerID)
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

func (s *InMemorySubscriptionStore) List(ctx context.Context, customerID string) ([]*subscription.Subscription, error) {
	return s.InMemoryStore.List(ctx, customerID,
		func(ctx context.Context, sub *subscription.Subscription, filter interface{}) bool {
			return sub != nil && sub.CustomerID == customerID
		},
		func(i, j *subscription.Subscription) bool {
			return i.CreatedAt.Before(j.CreatedAt)
		},
	)
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if err := s.InMemoryStore.Update(ctx, sub.ID, sub); err != nil {
		return ierr.NewError("subscription not found").
			WithHintf("Subscription %s does not exist", sub.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemorySubscriptionStore) Delete(ctx context.Context, id string) error {
	if err := s.InMemoryStore.Delete(ctx, id); err != nil {
		return ierr.NewError("subscription not found").
			WithHintf("Subscription %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
