package types

// Status is a type for the lifecycle status of a stored resource (e.g. plan,
// promo code). This is distinct from SubscriptionStatus, which tracks the
// billing lifecycle of a subscription.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)
