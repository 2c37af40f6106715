package subscription

import (
	"math"
	"time"

	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
)

// IsActive reports whether the subscription grants access. Past due
// subscriptions still count as active so service is not cut off while a
// payment retry is in flight.
func (s *Subscription) IsActive() bool {
	return lo.Contains(types.ActiveSubscriptionStatuses, s.Status)
}

func (s *Subscription) IsCanceled() bool {
	return s.Status == types.SubscriptionStatusCanceled
}

func (s *Subscription) IsTrialing() bool {
	return s.Status == types.SubscriptionStatusTrialing
}

func (s *Subscription) IsPastDue() bool {
	return s.Status == types.SubscriptionStatusPastDue
}

// CanCancel reports whether a cancellation request makes sense: the
// subscription must be active and not already scheduled for cancellation.
func (s *Subscription) CanCancel() bool {
	return s.IsActive() && !s.CancelAtPeriodEnd
}

// CanReactivate reports whether the subscription can be resumed. Providers
// keep a canceled-at-period-end subscription recoverable until the period
// actually lapses.
func (s *Subscription) CanReactivate() bool {
	return s.Status == types.SubscriptionStatusCanceled && s.CancelAtPeriodEnd
}

// NeedsAttention reports whether the subscription requires customer action
// before it degrades further.
func (s *Subscription) NeedsAttention() bool {
	return lo.Contains(types.AttentionSubscriptionStatuses, s.Status)
}

// IsExpiredAt reports whether the paid period has lapsed for a
// subscription that no longer grants access.
func (s *Subscription) IsExpiredAt(now time.Time) bool {
	return s.CurrentPeriodEnd.Before(now) && !s.IsActive()
}

// TimeRemainingAt returns how long until the current period ends, floored
// at zero.
func (s *Subscription) TimeRemainingAt(now time.Time) time.Duration {
	remaining := s.CurrentPeriodEnd.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DaysUntilRenewalAt returns whole days until the period ends, rounding
// partial days up. A lapsed period yields zero.
func (s *Subscription) DaysUntilRenewalAt(now time.Time) int {
	return ceilDays(s.TimeRemainingAt(now))
}

// IsInTrialAt reports whether the subscription is in its trial window.
func (s *Subscription) IsInTrialAt(now time.Time) bool {
	if s.Status != types.SubscriptionStatusTrialing {
		return false
	}
	if s.TrialEnd == nil {
		return false
	}
	return now.Before(*s.TrialEnd)
}

// TrialDaysRemainingAt returns whole days of trial left, rounding partial
// days up. Returns zero outside the trial window.
func (s *Subscription) TrialDaysRemainingAt(now time.Time) int {
	if !s.IsInTrialAt(now) {
		return 0
	}
	remaining := s.TrialEnd.Sub(now)
	if remaining < 0 {
		return 0
	}
	return ceilDays(remaining)
}

func ceilDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}
