package discount

import (
	"time"

	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// PromoCode is a redeemable discount. DiscountValue is a percentage for
// percentage discounts and minor currency units for fixed discounts. The
// Valid flag reflects the provider-side verdict on redeemability; Error
// explains an invalid code.
type PromoCode struct {
	ID             string             `db:"id" json:"id"`
	Code           string             `db:"code" json:"code"`
	DiscountType   types.DiscountType `db:"discount_type" json:"discount_type"`
	DiscountValue  decimal.Decimal    `db:"discount_value" json:"discount_value"`
	Currency       string             `db:"currency" json:"currency,omitempty"`
	Valid          bool               `db:"valid" json:"valid"`
	Error          string             `db:"error" json:"error,omitempty"`
	RedeemBy       *time.Time         `db:"redeem_by" json:"redeem_by,omitempty"`
	MaxRedemptions int                `db:"max_redemptions" json:"max_redemptions,omitempty"`
	TimesRedeemed  int                `db:"times_redeemed" json:"times_redeemed"`
	types.BaseModel
}

// IsExpiredAt reports whether the redemption deadline has passed. Codes
// without a deadline never expire.
func (p *PromoCode) IsExpiredAt(now time.Time) bool {
	if p.RedeemBy == nil {
		return false
	}
	return now.After(*p.RedeemBy)
}

// HasReachedUsageLimit reports whether the code has been redeemed its
// maximum number of times. Zero means unlimited.
func (p *PromoCode) HasReachedUsageLimit() bool {
	if p.MaxRedemptions == 0 {
		return false
	}
	return p.TimesRedeemed >= p.MaxRedemptions
}
