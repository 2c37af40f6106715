package types

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus is the billing lifecycle status of a subscription,
// mirroring the payment provider's status vocabulary.
type SubscriptionStatus string

const (
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
)

// ActiveSubscriptionStatuses are the statuses under which a subscription
// still grants access. Past-due is included: access continues while the
// provider retries payment.
var ActiveSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusTrialing,
	SubscriptionStatusActive,
	SubscriptionStatusPastDue,
}

// AttentionSubscriptionStatuses are the statuses that require user action
// before service can continue uninterrupted.
var AttentionSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusPastDue,
	SubscriptionStatusUnpaid,
	SubscriptionStatusIncomplete,
	SubscriptionStatusIncompleteExpired,
}

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusIncomplete,
		SubscriptionStatusIncompleteExpired,
		SubscriptionStatusTrialing,
		SubscriptionStatusActive,
		SubscriptionStatusPastDue,
		SubscriptionStatusCanceled,
		SubscriptionStatusUnpaid,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHintf("Subscription status %s is not valid", s).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// StatusColor is a presentation hint for a subscription status badge.
type StatusColor string

const (
	StatusColorGreen  StatusColor = "green"
	StatusColorYellow StatusColor = "yellow"
	StatusColorRed    StatusColor = "red"
	StatusColorGray   StatusColor = "gray"
)

// StatusInfo carries display metadata for a subscription status.
type StatusInfo struct {
	Label          string      `json:"label"`
	Color          StatusColor `json:"color"`
	Description    string      `json:"description"`
	ActionRequired bool        `json:"action_required"`
}

// GetStatusInfo returns display metadata for a subscription status. Unknown
// statuses map to a gray "Unknown" badge rather than an error.
func GetStatusInfo(status SubscriptionStatus) StatusInfo {
	switch status {
	case SubscriptionStatusActive:
		return StatusInfo{
			Label:       "Active",
			Color:       StatusColorGreen,
			Description: "Your subscription is active and current",
		}
	case SubscriptionStatusTrialing:
		return StatusInfo{
			Label:       "Trial",
			Color:       StatusColorYellow,
			Description: "You are currently in your trial period",
		}
	case SubscriptionStatusPastDue:
		return StatusInfo{
			Label:          "Past Due",
			Color:          StatusColorRed,
			Description:    "Payment failed. Please update your payment method",
			ActionRequired: true,
		}
	case SubscriptionStatusCanceled:
		return StatusInfo{
			Label:       "Canceled",
			Color:       StatusColorGray,
			Description: "Your subscription has been canceled",
		}
	case SubscriptionStatusUnpaid:
		return StatusInfo{
			Label:          "Unpaid",
			Color:          StatusColorRed,
			Description:    "Payment is required to continue service",
			ActionRequired: true,
		}
	case SubscriptionStatusIncomplete:
		return StatusInfo{
			Label:          "Incomplete",
			Color:          StatusColorYellow,
			Description:    "Subscription setup needs to be completed",
			ActionRequired: true,
		}
	case SubscriptionStatusIncompleteExpired:
		return StatusInfo{
			Label:          "Expired",
			Color:          StatusColorRed,
			Description:    "Subscription setup expired. Please try again",
			ActionRequired: true,
		}
	default:
		return StatusInfo{
			Label:       "Unknown",
			Color:       StatusColorGray,
			Description: "Subscription status is unknown",
		}
	}
}
