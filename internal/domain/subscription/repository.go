package subscription

import "context"

// Repository defines the interface for subscription persistence
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	// GetLatestByCustomer returns the customer's most recently created
	// subscription or ErrNotFound when none exists.
	GetLatestByCustomer(ctx context.Context, customerID string) (*Subscription, error)
	List(ctx context.Context, customerID string) ([]*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, id string) error
}
