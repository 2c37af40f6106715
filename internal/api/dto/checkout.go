package dto

import (
	"github.com/billforge/billforge/internal/types"
	"github.com/billforge/billforge/internal/validator"
)

type CreateCheckoutSessionRequest struct {
	PriceID       string         `json:"price_id" validate:"required"`
	Quantity      int64          `json:"quantity,omitempty"`
	CustomerID    string         `json:"customer_id,omitempty"`
	CustomerEmail string         `json:"customer_email,omitempty"`
	SuccessURL    string         `json:"success_url" validate:"required"`
	CancelURL     string         `json:"cancel_url" validate:"required"`
	TrialDays     int            `json:"trial_days,omitempty"`
	AllowPromoted bool           `json:"allow_promotion_codes,omitempty"`
	Metadata      types.Metadata `json:"metadata,omitempty"`
}

func (r *CreateCheckoutSessionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := validator.ValidatePriceID(r.PriceID); err != nil {
		return err
	}
	quantity, err := validator.SanitizeQuantity(r.Quantity)
	if err != nil {
		return err
	}
	r.Quantity = quantity

	successURL, err := validator.SanitizeURL(r.SuccessURL, "success_url")
	if err != nil {
		return err
	}
	r.SuccessURL = successURL

	cancelURL, err := validator.SanitizeURL(r.CancelURL, "cancel_url")
	if err != nil {
		return err
	}
	r.CancelURL = cancelURL

	if r.CustomerID != "" {
		if err := validator.ValidateCustomerID(r.CustomerID); err != nil {
			return err
		}
	}
	if r.CustomerEmail != "" {
		email, err := validator.SanitizeEmail(r.CustomerEmail)
		if err != nil {
			return err
		}
		r.CustomerEmail = email
	}
	if err := validator.ValidateTrialDays(r.TrialDays); err != nil {
		return err
	}
	if r.Metadata != nil {
		metadata, err := validator.SanitizeMetadata(r.Metadata)
		if err != nil {
			return err
		}
		r.Metadata = metadata
	}
	return nil
}

type CheckoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type CreatePortalSessionRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	ReturnURL  string `json:"return_url" validate:"required"`
}

func (r *CreatePortalSessionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := validator.ValidateCustomerID(r.CustomerID); err != nil {
		return err
	}
	returnURL, err := validator.SanitizeURL(r.ReturnURL, "return_url")
	if err != nil {
		return err
	}
	r.ReturnURL = returnURL
	return nil
}

type PortalSessionResponse struct {
	URL string `json:"url"`
}
