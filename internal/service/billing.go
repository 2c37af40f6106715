package service

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/domain/discount"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/payment"
	"github.com/billforge/billforge/internal/provider"
)

// promoCodeTTL keeps promo lookups short-lived since redemption counts
// move under us.
const promoCodeTTL = 5 * time.Minute

// BillingService handles hosted checkout, the customer billing portal and
// promo code validation.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, req *dto.CreateCheckoutSessionRequest) (*dto.CheckoutSessionResponse, error)
	CreateCustomerPortalSession(ctx context.Context, req *dto.CreatePortalSessionRequest) (*dto.PortalSessionResponse, error)
	ValidatePromoCode(ctx context.Context, req *dto.ValidatePromoCodeRequest) (*dto.DiscountResponse, error)
}

type billingService struct {
	ServiceParams
}

func NewBillingService(params ServiceParams) BillingService {
	if params.Retry == nil {
		params.Retry = payment.NewRetryHandler(params.Config.Retry, params.Logger, params.ErrorLog)
	}
	return &billingService{ServiceParams: params}
}

func (s *billingService) CreateCheckoutSession(ctx context.Context, req *dto.CreateCheckoutSessionRequest) (*dto.CheckoutSessionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	session, err := payment.Execute(ctx, s.Retry, "create_checkout_session", func(ctx context.Context) (*provider.CheckoutSession, error) {
		return s.Provider.CreateCheckoutSession(ctx, provider.CheckoutSessionParams{
			PriceRef:            req.PriceID,
			Quantity:            req.Quantity,
			CustomerRef:         req.CustomerID,
			CustomerEmail:       req.CustomerEmail,
			SuccessURL:          req.SuccessURL,
			CancelURL:           req.CancelURL,
			TrialDays:           req.TrialDays,
			AllowPromotionCodes: req.AllowPromoted,
			Metadata:            req.Metadata,
		})
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("checkout session created",
		"session_id", session.ID,
		"price_id", req.PriceID,
	)
	return &dto.CheckoutSessionResponse{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

func (s *billingService) CreateCustomerPortalSession(ctx context.Context, req *dto.CreatePortalSessionRequest) (*dto.PortalSessionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	customerRef := s.resolveProviderCustomer(ctx, req.CustomerID)
	session, err := payment.Execute(ctx, s.Retry, "create_portal_session", func(ctx context.Context) (*provider.PortalSession, error) {
		return s.Provider.CreatePortalSession(ctx, customerRef, req.ReturnURL)
	})
	if err != nil {
		return nil, err
	}

	return &dto.PortalSessionResponse{URL: session.URL}, nil
}

// resolveProviderCustomer maps a customer to the provider-side customer
// reference recorded on their latest subscription, falling back to the
// given id when no subscription exists.
func (s *billingService) resolveProviderCustomer(ctx context.Context, customerID string) string {
	if s.SubRepo == nil {
		return customerID
	}
	sub, err := s.SubRepo.GetLatestByCustomer(ctx, customerID)
	if err != nil || sub.ProviderCustomerID == "" {
		return customerID
	}
	return sub.ProviderCustomerID
}

func (s *billingService) ValidatePromoCode(ctx context.Context, req *dto.ValidatePromoCodeRequest) (*dto.DiscountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := discount.ValidateCodeFormat(req.Code); err != nil {
		return nil, err
	}

	promo, err := s.lookupPromoCode(ctx, req.Code)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return nil, err
		}
		promo = &discount.PromoCode{
			Code:  req.Code,
			Valid: false,
			Error: "Invalid promo code",
		}
	}

	calc := discount.Calculate(req.Amount, promo, req.Currency)
	return dto.NewDiscountResponse(promo, calc), nil
}

func (s *billingService) lookupPromoCode(ctx context.Context, code string) (*discount.PromoCode, error) {
	cacheKey := cache.GenerateKey(cache.PrefixPromoCode, code)
	if cached, ok := s.Cache.Get(ctx, cacheKey); ok {
		if promo, ok := cached.(*discount.PromoCode); ok {
			return promo, nil
		}
	}

	promo, err := payment.Execute(ctx, s.Retry, "get_promo_code", func(ctx context.Context) (*discount.PromoCode, error) {
		return s.Provider.GetPromoCode(ctx, code)
	})
	if err != nil {
		return nil, err
	}

	s.Cache.Set(ctx, cacheKey, promo, promoCodeTTL)
	return promo, nil
}
