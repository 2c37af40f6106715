package discount

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Calculation is the outcome of applying one or more promo codes to an
// amount in minor currency units.
type Calculation struct {
	OriginalAmount     int64            `json:"original_amount"`
	DiscountAmount     int64            `json:"discount_amount"`
	FinalAmount        int64            `json:"final_amount"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	Currency           string           `json:"currency"`
}

// Calculate applies a single promo code to an amount. An invalid code
// yields a zero discount rather than an error so callers can always
// render a calculation. The discount never exceeds the original amount.
//
// Fixed discounts apply their face value even when the code's currency
// differs from the charge currency.
func Calculate(originalAmount int64, promo *PromoCode, currency string) *Calculation {
	if currency == "" {
		currency = "USD"
	}

	if promo == nil || !promo.Valid {
		return &Calculation{
			OriginalAmount: originalAmount,
			FinalAmount:    originalAmount,
			Currency:       currency,
		}
	}

	var discountAmount int64
	var discountPercentage *decimal.Decimal

	switch promo.DiscountType {
	case types.DiscountTypePercentage:
		pct := promo.DiscountValue
		discountPercentage = &pct
		discountAmount = decimal.NewFromInt(originalAmount).
			Mul(pct).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	case types.DiscountTypeFixed:
		discountAmount = promo.DiscountValue.Round(0).IntPart()
		pct := decimal.Zero
		if originalAmount > 0 {
			pct = decimal.NewFromInt(discountAmount).
				Div(decimal.NewFromInt(originalAmount)).
				Mul(decimal.NewFromInt(100)).
				Round(0)
		}
		discountPercentage = &pct
	}

	if discountAmount > originalAmount {
		discountAmount = originalAmount
	}

	finalAmount := originalAmount - discountAmount
	if finalAmount < 0 {
		finalAmount = 0
	}

	return &Calculation{
		OriginalAmount:     originalAmount,
		DiscountAmount:     discountAmount,
		FinalAmount:        finalAmount,
		DiscountPercentage: discountPercentage,
		Currency:           currency,
	}
}

// ApplyMultiple applies a set of promo codes sequentially, percentage
// discounts first so they are computed against the larger base. The sort
// is stable, so codes of the same type apply in the order given. Nil and
// invalid codes are skipped.
func ApplyMultiple(originalAmount int64, promos []*PromoCode, currency string) *Calculation {
	if currency == "" {
		currency = "USD"
	}

	sorted := make([]*PromoCode, 0, len(promos))
	for _, promo := range promos {
		if promo != nil {
			sorted = append(sorted, promo)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DiscountType == types.DiscountTypePercentage &&
			sorted[j].DiscountType == types.DiscountTypeFixed
	})

	currentAmount := originalAmount
	var totalDiscount int64
	for _, promo := range sorted {
		if !promo.Valid {
			continue
		}
		calc := Calculate(currentAmount, promo, currency)
		totalDiscount += calc.DiscountAmount
		currentAmount = calc.FinalAmount
	}

	pct := decimal.Zero
	if originalAmount > 0 {
		pct = decimal.NewFromInt(totalDiscount).
			Div(decimal.NewFromInt(originalAmount)).
			Mul(decimal.NewFromInt(100)).
			Round(0)
	}

	return &Calculation{
		OriginalAmount:     originalAmount,
		DiscountAmount:     totalDiscount,
		FinalAmount:        currentAmount,
		DiscountPercentage: &pct,
		Currency:           currency,
	}
}

// FormatDiscount renders a promo code for display, e.g. "20% off" or
// "5.00 off".
func FormatDiscount(promo *PromoCode) string {
	if promo == nil || !promo.Valid {
		return "Invalid"
	}

	if promo.DiscountType == types.DiscountTypePercentage {
		return fmt.Sprintf("%s%% off", promo.DiscountValue.String())
	}

	amount := promo.DiscountValue.Div(decimal.NewFromInt(100))
	return fmt.Sprintf("%s off", amount.StringFixed(2))
}

var codeFormatRegex = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)

// ValidateCodeFormat checks the promo code charset and length before any
// provider lookup.
func ValidateCodeFormat(code string) error {
	trimmed := strings.TrimSpace(code)

	if trimmed == "" {
		return ierr.NewError("empty promo code").
			WithHint("Promo code cannot be empty").
			Mark(ierr.ErrValidation)
	}

	if len(trimmed) > 50 {
		return ierr.NewError("promo code too long").
			WithHint("Promo code is too long").
			Mark(ierr.ErrValidation)
	}

	if !codeFormatRegex.MatchString(trimmed) {
		return ierr.NewError("invalid promo code characters").
			WithHint("Promo code contains invalid characters").
			Mark(ierr.ErrValidation)
	}

	return nil
}
