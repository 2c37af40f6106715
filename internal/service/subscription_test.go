package service

import (
	"context"
	"testing"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/payment"
	"github.com/billforge/billforge/internal/provider"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service   SubscriptionService
	errorLog  *payment.ErrorLog
	basicPlan *plan.Plan
	proPlan   *plan.Plan
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.errorLog = payment.NewErrorLog(s.GetLogger())
	s.service = NewSubscriptionService(s.params())
	s.seedPlans()
}

func (s *SubscriptionServiceSuite) params() ServiceParams {
	return ServiceParams{
		Logger:   s.GetLogger(),
		Config:   s.GetConfig(),
		PlanRepo: s.GetStores().PlanRepo,
		SubRepo:  s.GetStores().SubRepo,
		Provider: s.GetProvider(),
		Cache:    s.GetCache(),
		ErrorLog: s.errorLog,
	}
}

func (s *SubscriptionServiceSuite) seedPlans() {
	s.basicPlan = &plan.Plan{
		ID:              "plan_basic",
		Name:            "Basic",
		Price:           900,
		Currency:        "USD",
		Interval:        types.BillingIntervalMonth,
		IntervalCount:   1,
		Tier:            1,
		Features:        []string{"basic-support"},
		Active:          true,
		ProviderPriceID: "price_basic",
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.proPlan = &plan.Plan{
		ID:              "plan_pro",
		Name:            "Pro",
		Price:           2900,
		Currency:        "USD",
		Interval:        types.BillingIntervalMonth,
		IntervalCount:   1,
		Tier:            2,
		Features:        []string{"basic-support", "priority-support"},
		Active:          true,
		ProviderPriceID: "price_pro",
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	inactive := &plan.Plan{
		ID:              "plan_legacy",
		Name:            "Legacy",
		Price:           500,
		Currency:        "USD",
		Interval:        types.BillingIntervalMonth,
		IntervalCount:   1,
		Tier:            1,
		Active:          false,
		ProviderPriceID: "price_legacy",
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}

	ctx := s.GetContext()
	s.NoError(s.GetStores().PlanRepo.Create(ctx, s.basicPlan))
	s.NoError(s.GetStores().PlanRepo.Create(ctx, s.proPlan))
	s.NoError(s.GetStores().PlanRepo.Create(ctx, inactive))
}

func (s *SubscriptionServiceSuite) seedActiveSubscription(customerID string, p *plan.Plan) *subscription.Subscription {
	now := s.GetNow()
	sub := &subscription.Subscription{
		ID:                     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		CustomerID:             customerID,
		PlanID:                 p.ID,
		Status:                 types.SubscriptionStatusActive,
		CurrentPeriodStart:     now.Add(-15 * 24 * time.Hour),
		CurrentPeriodEnd:       now.Add(15 * 24 * time.Hour),
		ProviderSubscriptionID: "sub_provider_1",
		BaseModel:              types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *SubscriptionServiceSuite) TestGetAvailablePlans() {
	resp, err := s.service.GetAvailablePlans(s.GetContext())
	s.NoError(err)
	s.Len(resp.Plans, 2)
	s.Equal("plan_basic", resp.Plans[0].ID)
	s.Equal("plan_pro", resp.Plans[1].ID)
	s.Equal("$9.00", resp.Plans[0].FormattedPrice)
	s.Equal(0, s.GetProvider().Calls("list_plans"))
}

func (s *SubscriptionServiceSuite) TestGetAvailablePlansUsesCache() {
	_, err := s.service.GetAvailablePlans(s.GetContext())
	s.NoError(err)

	// Mutating the store must not affect the cached listing.
	s.NoError(s.GetStores().PlanRepo.Delete(s.GetContext(), "plan_pro"))

	resp, err := s.service.GetAvailablePlans(s.GetContext())
	s.NoError(err)
	s.Len(resp.Plans, 2)
}

func (s *SubscriptionServiceSuite) TestGetAvailablePlansFallsBackOnEmptyStore() {
	stores := s.GetStores()
	emptyService := NewSubscriptionService(ServiceParams{
		Logger:   s.GetLogger(),
		Config:   s.GetConfig(),
		PlanRepo: testutil.NewInMemoryPlanStore(),
		SubRepo:  stores.SubRepo,
		Provider: s.GetProvider(),
		Cache:    s.GetCache(),
		ErrorLog: s.errorLog,
	})
	s.GetCache().Flush(s.GetContext())
	s.GetProvider().Plans = []*plan.Plan{s.proPlan, s.basicPlan}

	resp, err := emptyService.GetAvailablePlans(s.GetContext())
	s.NoError(err)
	s.Len(resp.Plans, 2)
	s.Equal("plan_basic", resp.Plans[0].ID)
	s.Equal(1, s.GetProvider().Calls("list_plans"))
}

func (s *SubscriptionServiceSuite) TestGetAvailablePlansFallsBackOnMissingTable() {
	missingService := NewSubscriptionService(ServiceParams{
		Logger:   s.GetLogger(),
		Config:   s.GetConfig(),
		PlanRepo: &tableMissingPlanRepo{},
		SubRepo:  s.GetStores().SubRepo,
		Provider: s.GetProvider(),
		Cache:    s.GetCache(),
		ErrorLog: s.errorLog,
	})
	s.GetCache().Flush(s.GetContext())
	s.GetProvider().Plans = []*plan.Plan{s.basicPlan}

	resp, err := missingService.GetAvailablePlans(s.GetContext())
	s.NoError(err)
	s.Len(resp.Plans, 1)
	s.Equal(1, s.GetProvider().Calls("list_plans"))
}

func (s *SubscriptionServiceSuite) TestGetCurrentSubscriptionAbsent() {
	resp, err := s.service.GetCurrentSubscription(s.GetContext(), "cus_nobody")
	s.NoError(err)
	s.Nil(resp)
}

func (s *SubscriptionServiceSuite) TestGetCurrentSubscription() {
	sub := s.seedActiveSubscription("cus_123", s.basicPlan)

	resp, err := s.service.GetCurrentSubscription(s.GetContext(), "cus_123")
	s.NoError(err)
	s.Require().NotNil(resp)
	s.Equal(sub.ID, resp.Subscription.ID)
	s.Require().NotNil(resp.Plan)
	s.Equal("plan_basic", resp.Plan.ID)
	s.Require().NotNil(resp.Summary)
	s.Equal("Basic", resp.Summary.PlanName)
}

func (s *SubscriptionServiceSuite) TestGetCurrentSubscriptionIgnoresCanceled() {
	sub := s.seedActiveSubscription("cus_456", s.basicPlan)
	sub.Status = types.SubscriptionStatusCanceled
	s.NoError(s.GetStores().SubRepo.Update(s.GetContext(), sub))

	resp, err := s.service.GetCurrentSubscription(s.GetContext(), "cus_456")
	s.NoError(err)
	s.Nil(resp)
}

func (s *SubscriptionServiceSuite) TestCreateSubscription() {
	now := s.GetNow()
	trialStart := now
	s.GetProvider().CreateResult = &provider.CreateSubscriptionResult{
		SubscriptionRef:    "sub_provider_new",
		CustomerRef:        "cus_provider_9",
		Status:             types.SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.Add(30 * 24 * time.Hour),
		TrialStart:         &trialStart,
	}

	resp, err := s.service.CreateSubscription(s.GetContext(), &dto.CreateSubscriptionRequest{
		CustomerID: "cus_123",
		PlanID:     "plan_basic",
	})
	s.NoError(err)
	s.Require().NotNil(resp)
	s.Equal(types.SubscriptionStatusActive, resp.Subscription.Status)
	s.Equal("sub_provider_new", resp.Subscription.ProviderSubscriptionID)
	s.Equal(1, s.GetProvider().Calls("create_subscription"))

	stored, err := s.GetStores().SubRepo.GetLatestByCustomer(s.GetContext(), "cus_123")
	s.NoError(err)
	s.Equal(resp.Subscription.ID, stored.ID)
	s.Equal("cus_provider_9", stored.ProviderCustomerID)
	s.Require().NotNil(stored.TrialStart)
	s.True(stored.TrialStart.Equal(trialStart))
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionValidatesRequest() {
	_, err := s.service.CreateSubscription(s.GetContext(), &dto.CreateSubscriptionRequest{
		PlanID: "plan_basic",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.Equal(0, s.GetProvider().Calls("create_subscription"))
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionPlanNotFound() {
	_, err := s.service.CreateSubscription(s.GetContext(), &dto.CreateSubscriptionRequest{
		CustomerID: "cus_123",
		PlanID:     "plan_missing",
	})
	s.Error(err)

	var paymentErr *payment.Error
	s.Require().ErrorAs(err, &paymentErr)
	s.Equal(payment.ErrorTypePlanNotFound, paymentErr.Type)
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionInactivePlan() {
	_, err := s.service.CreateSubscription(s.GetContext(), &dto.CreateSubscriptionRequest{
		CustomerID: "cus_123",
		PlanID:     "plan_legacy",
	})
	s.Error(err)

	var paymentErr *payment.Error
	s.Require().ErrorAs(err, &paymentErr)
	s.Equal(payment.ErrorTypePlanNotFound, paymentErr.Type)
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionRejectsSecondActive() {
	s.seedActiveSubscription("cus_123", s.basicPlan)

	_, err := s.service.CreateSubscription(s.GetContext(), &dto.CreateSubscriptionRequest{
		CustomerID: "cus_123",
		PlanID:     "plan_pro",
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
	s.Equal(0, s.GetProvider().Calls("create_subscription"))
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionRetriesTimeouts() {
	s.GetProvider().FailWith("create_subscription", context.DeadlineExceeded)

	_, err := s.service.CreateSubscription(s.GetContext(), &dto.CreateSubscriptionRequest{
		CustomerID: "cus_123",
		PlanID:     "plan_basic",
	})
	s.Error(err)
	s.Equal(3, s.GetProvider().Calls("create_subscription"))

	var paymentErr *payment.Error
	s.Require().ErrorAs(err, &paymentErr)
	s.Equal(payment.ErrorTypeTimeoutError, paymentErr.Type)

	// Nothing was persisted for the failed attempt.
	_, err = s.GetStores().SubRepo.GetLatestByCustomer(s.GetContext(), "cus_123")
	s.True(ierr.IsNotFound(err))
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionCardDeclinedNotRetried() {
	s.GetProvider().FailWith("create_subscription", &stripe.Error{
		Type:        stripe.ErrorTypeCard,
		Code:        stripe.ErrorCodeCardDeclined,
		DeclineCode: stripe.DeclineCodeInsufficientFunds,
	})

	_, err := s.service.CreateSubscription(s.GetContext(), &dto.CreateSubscriptionRequest{
		CustomerID: "cus_123",
		PlanID:     "plan_basic",
	})
	s.Error(err)
	s.Equal(1, s.GetProvider().Calls("create_subscription"))

	var paymentErr *payment.Error
	s.Require().ErrorAs(err, &paymentErr)
	s.Equal(payment.ErrorTypeInsufficientFunds, paymentErr.Type)
	s.False(paymentErr.Retryable)
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionRollsBackOnStoreFailure() {
	now := s.GetNow()
	s.GetProvider().CreateResult = &provider.CreateSubscriptionResult{
		SubscriptionRef:    "sub_provider_new",
		Status:             types.SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.Add(30 * 24 * time.Hour),
	}

	failingService := NewSubscriptionService(ServiceParams{
		Logger:   s.GetLogger(),
		Config:   s.GetConfig(),
		PlanRepo: s.GetStores().PlanRepo,
		SubRepo:  &failingCreateSubRepo{Repository: s.GetStores().SubRepo},
		Provider: s.GetProvider(),
		Cache:    s.GetCache(),
		ErrorLog: s.errorLog,
	})

	_, err := failingService.CreateSubscription(s.GetContext(), &dto.CreateSubscriptionRequest{
		CustomerID: "cus_123",
		PlanID:     "plan_basic",
	})
	s.Error(err)
	s.Equal(1, s.GetProvider().Calls("cancel_subscription"))
	s.GreaterOrEqual(s.errorLog.Len(), 1)
}

func (s *SubscriptionServiceSuite) TestUpdateSubscriptionMergesMetadata() {
	sub := s.seedActiveSubscription("cus_123", s.basicPlan)
	sub.Metadata = types.Metadata{"seat_count": "5", "source": "signup"}
	s.NoError(s.GetStores().SubRepo.Update(s.GetContext(), sub))

	resp, err := s.service.UpdateSubscription(s.GetContext(), sub.ID, &dto.UpdateSubscriptionRequest{
		Metadata: types.Metadata{"seat_count": "8", "campaign": "upgrade-q3"},
	})
	s.NoError(err)
	s.Equal("8", resp.Subscription.Metadata["seat_count"])
	s.Equal("signup", resp.Subscription.Metadata["source"])
	s.Equal("upgrade-q3", resp.Subscription.Metadata["campaign"])
}

func (s *SubscriptionServiceSuite) TestUpdateSubscriptionSchedulesCancellation() {
	sub := s.seedActiveSubscription("cus_123", s.basicPlan)

	atPeriodEnd := true
	resp, err := s.service.UpdateSubscription(s.GetContext(), sub.ID, &dto.UpdateSubscriptionRequest{
		CancelAtPeriodEnd: &atPeriodEnd,
	})
	s.NoError(err)
	s.True(resp.Subscription.CancelAtPeriodEnd)
	s.Equal(1, s.GetProvider().Calls("cancel_subscription"))
}

func (s *SubscriptionServiceSuite) TestUpdateSubscriptionNotFound() {
	atPeriodEnd := true
	_, err := s.service.UpdateSubscription(s.GetContext(), "subs_missing", &dto.UpdateSubscriptionRequest{
		CancelAtPeriodEnd: &atPeriodEnd,
	})
	s.Error(err)

	var paymentErr *payment.Error
	s.Require().ErrorAs(err, &paymentErr)
	s.Equal(payment.ErrorTypeSubscriptionNotFound, paymentErr.Type)
}

func (s *SubscriptionServiceSuite) TestCancelSubscriptionImmediate() {
	sub := s.seedActiveSubscription("cus_123", s.basicPlan)

	resp, err := s.service.CancelSubscription(s.GetContext(), sub.ID, false)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCanceled, resp.Subscription.Status)
	s.Require().NotNil(resp.Subscription.CanceledAt)
	s.False(resp.Subscription.CancelAtPeriodEnd)
	s.Equal(1, s.GetProvider().Calls("cancel_subscription"))
}

func (s *SubscriptionServiceSuite) TestCancelSubscriptionAtPeriodEnd() {
	sub := s.seedActiveSubscription("cus_123", s.basicPlan)

	resp, err := s.service.CancelSubscription(s.GetContext(), sub.ID, true)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, resp.Subscription.Status)
	s.True(resp.Subscription.CancelAtPeriodEnd)
	s.Nil(resp.Subscription.CanceledAt)
}

func (s *SubscriptionServiceSuite) TestCancelSubscriptionAlreadyScheduled() {
	sub := s.seedActiveSubscription("cus_123", s.basicPlan)
	sub.CancelAtPeriodEnd = true
	s.NoError(s.GetStores().SubRepo.Update(s.GetContext(), sub))

	_, err := s.service.CancelSubscription(s.GetContext(), sub.ID, false)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
	s.Equal(0, s.GetProvider().Calls("cancel_subscription"))
}

func (s *SubscriptionServiceSuite) TestReactivateSubscription() {
	sub := s.seedActiveSubscription("cus_123", s.basicPlan)
	now := s.GetNow()
	sub.Status = types.SubscriptionStatusCanceled
	sub.CancelAtPeriodEnd = true
	sub.CanceledAt = &now
	s.NoError(s.GetStores().SubRepo.Update(s.GetContext(), sub))

	resp, err := s.service.ReactivateSubscription(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, resp.Subscription.Status)
	s.False(resp.Subscription.CancelAtPeriodEnd)
	s.Nil(resp.Subscription.CanceledAt)
	s.Equal(1, s.GetProvider().Calls("reactivate_subscription"))
}

func (s *SubscriptionServiceSuite) TestReactivateSubscriptionRequiresScheduledCancel() {
	sub := s.seedActiveSubscription("cus_123", s.basicPlan)

	_, err := s.service.ReactivateSubscription(s.GetContext(), sub.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
	s.Equal(0, s.GetProvider().Calls("reactivate_subscription"))
}

func (s *SubscriptionServiceSuite) TestChangeSubscriptionPlanUpgrade() {
	sub := s.seedActiveSubscription("cus_123", s.basicPlan)

	resp, err := s.service.ChangeSubscriptionPlan(s.GetContext(), sub.ID, &dto.ChangeSubscriptionPlanRequest{
		NewPlanID: "plan_pro",
	})
	s.NoError(err)
	s.Equal(types.PlanChangeTypeUpgrade, resp.ChangeType)
	s.Equal("plan_pro", resp.Subscription.Subscription.PlanID)
	s.Equal(int64(1000), resp.ProrationAmount)
	s.Contains(resp.Warnings, "Price will change by 222%")
	s.WithinDuration(time.Now().UTC(), resp.EffectiveDate, time.Minute)
	s.Equal(1, s.GetProvider().Calls("update_subscription"))

	stored, err := s.GetStores().SubRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal("plan_pro", stored.PlanID)
}

func (s *SubscriptionServiceSuite) TestChangeSubscriptionPlanDowngrade() {
	sub := s.seedActiveSubscription("cus_123", s.proPlan)

	resp, err := s.service.ChangeSubscriptionPlan(s.GetContext(), sub.ID, &dto.ChangeSubscriptionPlanRequest{
		NewPlanID: "plan_basic",
	})
	s.NoError(err)
	s.Equal(types.PlanChangeTypeDowngrade, resp.ChangeType)
	s.Contains(resp.Warnings, "You will lose access to: priority-support")
	s.Equal(sub.CurrentPeriodEnd, resp.EffectiveDate)
}

func (s *SubscriptionServiceSuite) TestChangeSubscriptionPlanSamePlan() {
	sub := s.seedActiveSubscription("cus_123", s.basicPlan)

	_, err := s.service.ChangeSubscriptionPlan(s.GetContext(), sub.ID, &dto.ChangeSubscriptionPlanRequest{
		NewPlanID: "plan_basic",
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
	s.Equal(0, s.GetProvider().Calls("update_subscription"))
}

func (s *SubscriptionServiceSuite) TestChangeSubscriptionPlanUnknownTarget() {
	sub := s.seedActiveSubscription("cus_123", s.basicPlan)

	_, err := s.service.ChangeSubscriptionPlan(s.GetContext(), sub.ID, &dto.ChangeSubscriptionPlanRequest{
		NewPlanID: "plan_missing",
	})
	s.Error(err)

	var paymentErr *payment.Error
	s.Require().ErrorAs(err, &paymentErr)
	s.Equal(payment.ErrorTypePlanNotFound, paymentErr.Type)
}

type tableMissingPlanRepo struct {
	plan.Repository
}

func (r *tableMissingPlanRepo) List(ctx context.Context, filter *types.PlanFilter) ([]*plan.Plan, error) {
	return nil, ierr.NewError("relation \"plans\" does not exist").
		WithHint("Table plans does not exist").
		Mark(ierr.ErrTableNotFound)
}

type failingCreateSubRepo struct {
	subscription.Repository
}

func (r *failingCreateSubRepo) Create(ctx context.Context, sub *subscription.Subscription) error {
	return ierr.NewError("insert failed").
		WithHint("Could not persist subscription").
		Mark(ierr.ErrDatabase)
}
