package types

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/samber/lo"
)

// DiscountType represents the type of promo code discount (fixed or percentage)
type DiscountType string

const (
	// DiscountTypePercentage represents a percentage-based discount (0-100)
	DiscountTypePercentage DiscountType = "percentage"
	// DiscountTypeFixed represents a fixed amount discount in minor currency units
	DiscountTypeFixed DiscountType = "fixed"
)

func (t DiscountType) String() string {
	return string(t)
}

func (t DiscountType) Validate() error {
	allowed := []DiscountType{DiscountTypePercentage, DiscountTypeFixed}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid discount type").
			WithHintf("Discount type %s is not valid", t).
			Mark(ierr.ErrValidation)
	}
	return nil
}
