package service

import (
	"testing"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/discount"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/payment"
	"github.com/billforge/billforge/internal/provider"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingService
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func (s *BillingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewBillingService(ServiceParams{
		Logger:   s.GetLogger(),
		Config:   s.GetConfig(),
		PlanRepo: s.GetStores().PlanRepo,
		SubRepo:  s.GetStores().SubRepo,
		Provider: s.GetProvider(),
		Cache:    s.GetCache(),
		ErrorLog: payment.NewErrorLog(s.GetLogger()),
	})
}

func (s *BillingServiceSuite) TestCreateCheckoutSession() {
	s.GetProvider().Checkout = &provider.CheckoutSession{
		ID:  "cs_test_123",
		URL: "https://checkout.example.com/cs_test_123",
	}

	resp, err := s.service.CreateCheckoutSession(s.GetContext(), &dto.CreateCheckoutSessionRequest{
		PriceID:    "price_basic",
		SuccessURL: "https://app.example.com/success",
		CancelURL:  "https://app.example.com/cancel",
	})
	s.NoError(err)
	s.Equal("cs_test_123", resp.SessionID)
	s.Equal("https://checkout.example.com/cs_test_123", resp.URL)
	s.Equal(1, s.GetProvider().Calls("create_checkout_session"))
}

func (s *BillingServiceSuite) TestCreateCheckoutSessionRejectsBadURL() {
	_, err := s.service.CreateCheckoutSession(s.GetContext(), &dto.CreateCheckoutSessionRequest{
		PriceID:    "price_basic",
		SuccessURL: "javascript:alert(1)",
		CancelURL:  "https://app.example.com/cancel",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.Equal(0, s.GetProvider().Calls("create_checkout_session"))
}

func (s *BillingServiceSuite) TestCreateCustomerPortalSession() {
	s.GetProvider().Portal = &provider.PortalSession{
		URL: "https://billing.example.com/session/xyz",
	}

	resp, err := s.service.CreateCustomerPortalSession(s.GetContext(), &dto.CreatePortalSessionRequest{
		CustomerID: "cus_123",
		ReturnURL:  "https://app.example.com/account",
	})
	s.NoError(err)
	s.Equal("https://billing.example.com/session/xyz", resp.URL)
	s.Equal("cus_123", s.GetProvider().PortalCustomerRef)
}

func (s *BillingServiceSuite) TestCreateCustomerPortalSessionUsesStoredProviderRef() {
	now := time.Now().UTC()
	sub := &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		CustomerID:         "cus_123",
		PlanID:             "plan_basic",
		Status:             types.SubscriptionStatusActive,
		CurrentPeriodStart: now.Add(-24 * time.Hour),
		CurrentPeriodEnd:   now.Add(29 * 24 * time.Hour),
		ProviderCustomerID: "cus_provider_9",
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubRepo.Create(s.GetContext(), sub))
	s.GetProvider().Portal = &provider.PortalSession{
		URL: "https://billing.example.com/session/abc",
	}

	_, err := s.service.CreateCustomerPortalSession(s.GetContext(), &dto.CreatePortalSessionRequest{
		CustomerID: "cus_123",
		ReturnURL:  "https://app.example.com/account",
	})
	s.NoError(err)
	s.Equal("cus_provider_9", s.GetProvider().PortalCustomerRef)
}

func (s *BillingServiceSuite) TestCreateCustomerPortalSessionRejectsBadCustomer() {
	_, err := s.service.CreateCustomerPortalSession(s.GetContext(), &dto.CreatePortalSessionRequest{
		CustomerID: "user-123",
		ReturnURL:  "https://app.example.com/account",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BillingServiceSuite) TestValidatePromoCodePercentage() {
	s.GetProvider().PromoCodes["SAVE20"] = &discount.PromoCode{
		ID:            "promo_1",
		Code:          "SAVE20",
		DiscountType:  types.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(20),
		Valid:         true,
	}

	resp, err := s.service.ValidatePromoCode(s.GetContext(), &dto.ValidatePromoCodeRequest{
		Code:     "save20",
		Amount:   10000,
		Currency: "usd",
	})
	s.NoError(err)
	s.True(resp.Valid)
	s.Equal("SAVE20", resp.Code)
	s.Equal("20% off", resp.Description)
	s.Equal(int64(2000), resp.DiscountAmount)
	s.Equal(int64(8000), resp.FinalAmount)
	s.Equal("$80.00", resp.FormattedTotal)
}

func (s *BillingServiceSuite) TestValidatePromoCodeUnknown() {
	resp, err := s.service.ValidatePromoCode(s.GetContext(), &dto.ValidatePromoCodeRequest{
		Code:     "NOPE",
		Amount:   10000,
		Currency: "USD",
	})
	s.NoError(err)
	s.False(resp.Valid)
	s.Equal("Invalid promo code", resp.Error)
	s.Equal(int64(0), resp.DiscountAmount)
	s.Equal(int64(10000), resp.FinalAmount)
}

func (s *BillingServiceSuite) TestValidatePromoCodeCached() {
	s.GetProvider().PromoCodes["SAVE20"] = &discount.PromoCode{
		ID:            "promo_1",
		Code:          "SAVE20",
		DiscountType:  types.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(20),
		Valid:         true,
	}

	req := &dto.ValidatePromoCodeRequest{Code: "SAVE20", Amount: 5000, Currency: "USD"}
	_, err := s.service.ValidatePromoCode(s.GetContext(), req)
	s.NoError(err)

	_, err = s.service.ValidatePromoCode(s.GetContext(), &dto.ValidatePromoCodeRequest{
		Code: "SAVE20", Amount: 7500, Currency: "USD",
	})
	s.NoError(err)
	s.Equal(1, s.GetProvider().Calls("get_promo_code"))
}

func (s *BillingServiceSuite) TestValidatePromoCodeExpired() {
	expired := time.Now().UTC().Add(-24 * time.Hour)
	s.GetProvider().PromoCodes["OLD"] = &discount.PromoCode{
		ID:            "promo_2",
		Code:          "OLD",
		DiscountType:  types.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(50),
		Valid:         false,
		Error:         "Promo code has expired",
		RedeemBy:      &expired,
	}

	resp, err := s.service.ValidatePromoCode(s.GetContext(), &dto.ValidatePromoCodeRequest{
		Code:     "OLD",
		Amount:   10000,
		Currency: "USD",
	})
	s.NoError(err)
	s.False(resp.Valid)
	s.Equal("Promo code has expired", resp.Error)
	s.Equal(int64(10000), resp.FinalAmount)
}
