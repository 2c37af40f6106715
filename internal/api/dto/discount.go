package dto

import (
	"github.com/billforge/billforge/internal/domain/discount"
	"github.com/billforge/billforge/internal/types"
	"github.com/billforge/billforge/internal/validator"
)

type ValidatePromoCodeRequest struct {
	Code     string `json:"code" validate:"required"`
	Amount   int64  `json:"amount" validate:"required"`
	Currency string `json:"currency"`
}

func (r *ValidatePromoCodeRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	code, err := validator.SanitizePromoCode(r.Code)
	if err != nil {
		return err
	}
	r.Code = code

	if err := validator.ValidatePaymentAmount(r.Amount); err != nil {
		return err
	}
	currency, err := validator.SanitizeCurrency(r.Currency)
	if err != nil {
		return err
	}
	r.Currency = currency
	return nil
}

type DiscountResponse struct {
	Code           string `json:"code"`
	Valid          bool   `json:"valid"`
	Error          string `json:"error,omitempty"`
	Description    string `json:"description"`
	OriginalAmount int64  `json:"original_amount"`
	DiscountAmount int64  `json:"discount_amount"`
	FinalAmount    int64  `json:"final_amount"`
	FormattedTotal string `json:"formatted_total"`
}

func NewDiscountResponse(promo *discount.PromoCode, calc *discount.Calculation) *DiscountResponse {
	resp := &DiscountResponse{
		Description:    discount.FormatDiscount(promo),
		OriginalAmount: calc.OriginalAmount,
		DiscountAmount: calc.DiscountAmount,
		FinalAmount:    calc.FinalAmount,
		FormattedTotal: types.FormatAmount(calc.FinalAmount, calc.Currency),
	}
	if promo != nil {
		resp.Code = promo.Code
		resp.Valid = promo.Valid
		resp.Error = promo.Error
	}
	return resp
}
