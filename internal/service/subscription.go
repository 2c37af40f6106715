package service

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/proration"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/payment"
	"github.com/billforge/billforge/internal/provider"
	"github.com/billforge/billforge/internal/types"
)

// SubscriptionService orchestrates the subscription lifecycle across the
// plan catalog, the backing store and the payment provider.
type SubscriptionService interface {
	GetAvailablePlans(ctx context.Context) (*dto.ListPlansResponse, error)
	// GetCurrentSubscription returns the customer's latest subscription
	// with its plan joined, or (nil, nil) when the customer has none.
	GetCurrentSubscription(ctx context.Context, customerID string) (*dto.SubscriptionResponse, error)
	CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	UpdateSubscription(ctx context.Context, id string, req *dto.UpdateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	CancelSubscription(ctx context.Context, id string, atPeriodEnd bool) (*dto.SubscriptionResponse, error)
	ReactivateSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	ChangeSubscriptionPlan(ctx context.Context, id string, req *dto.ChangeSubscriptionPlanRequest) (*dto.ChangeSubscriptionPlanResponse, error)
}

type subscriptionService struct {
	ServiceParams
	proration proration.Calculator
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	if params.Retry == nil {
		params.Retry = payment.NewRetryHandler(params.Config.Retry, params.Logger, params.ErrorLog)
	}
	return &subscriptionService{
		ServiceParams: params,
		proration:     proration.NewCalculator(),
	}
}

func (s *subscriptionService) GetAvailablePlans(ctx context.Context) (*dto.ListPlansResponse, error) {
	cacheKey := cache.GenerateKey(cache.PrefixPlan, "available")
	if cached, ok := s.Cache.Get(ctx, cacheKey); ok {
		if plans, ok := cached.([]*plan.Plan); ok {
			return dto.NewListPlansResponse(plans), nil
		}
	}

	plans, err := s.listStorePlans(ctx)
	if err != nil {
		if !ierr.IsTableNotFound(err) {
			return nil, err
		}
		s.Logger.Warnw("plan table missing, falling back to provider catalog", "error", err)
		plans = nil
	}

	// An empty store also defers to the provider so a fresh deployment
	// still has a sellable catalog.
	if len(plans) == 0 {
		plans, err = s.listProviderPlans(ctx)
		if err != nil {
			return nil, err
		}
	}

	s.Cache.Set(ctx, cacheKey, plans, s.Config.Cache.PlanTTL)
	return dto.NewListPlansResponse(plans), nil
}

func (s *subscriptionService) listStorePlans(ctx context.Context) ([]*plan.Plan, error) {
	active := true
	return s.PlanRepo.List(ctx, &types.PlanFilter{
		Active: &active,
		SortBy: types.PlanSortByTier,
		Order:  types.SortOrderAsc,
	})
}

func (s *subscriptionService) listProviderPlans(ctx context.Context) ([]*plan.Plan, error) {
	plans, err := payment.Execute(ctx, s.Retry, "list_plans", func(ctx context.Context) ([]*plan.Plan, error) {
		return s.Provider.ListPlans(ctx)
	})
	if err != nil {
		return nil, err
	}

	active := true
	plans = plan.Filter(plans, &types.PlanFilter{Active: &active})
	return plan.Sort(plans, types.PlanSortByTier, types.SortOrderAsc), nil
}

func (s *subscriptionService) GetCurrentSubscription(ctx context.Context, customerID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.GetLatestByCustomer(ctx, customerID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	// Only active-status subscriptions count as current. A customer whose
	// latest subscription is canceled or incomplete has none.
	if !sub.IsActive() {
		return nil, nil
	}
	return s.toResponse(ctx, sub), nil
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, payment.FromSubscriptionOp(err, "create_subscription")
	}
	if !p.Active {
		return nil, payment.NewError(payment.ErrorTypePlanNotFound, "plan is not available for purchase")
	}

	existing, err := s.SubRepo.GetLatestByCustomer(ctx, req.CustomerID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if existing != nil && existing.IsActive() {
		return nil, ierr.NewError("customer already has an active subscription").
			WithHint("You already have an active subscription").
			Mark(ierr.ErrInvalidOperation)
	}

	trialDays := req.TrialDays
	if trialDays == 0 {
		trialDays = p.TrialPeriodDays
	}

	result, err := payment.Execute(ctx, s.Retry, "create_subscription", func(ctx context.Context) (*provider.CreateSubscriptionResult, error) {
		return s.Provider.CreateSubscription(ctx, provider.CreateSubscriptionParams{
			CustomerRef: req.CustomerID,
			PriceRef:    p.ProviderPriceID,
			TrialDays:   trialDays,
			PromoCode:   req.PromoCode,
			Metadata:    req.Metadata,
		})
	})
	if err != nil {
		return nil, err
	}

	sub := req.ToSubscription(ctx)
	sub.Status = result.Status
	sub.CurrentPeriodStart = result.CurrentPeriodStart
	sub.CurrentPeriodEnd = result.CurrentPeriodEnd
	sub.TrialStart = result.TrialStart
	sub.TrialEnd = result.TrialEnd
	sub.ProviderCustomerID = result.CustomerRef
	if sub.ProviderCustomerID == "" {
		sub.ProviderCustomerID = req.CustomerID
	}
	sub.ProviderSubscriptionID = result.SubscriptionRef

	if err := s.SubRepo.Create(ctx, sub); err != nil {
		// Roll back the provider subscription so a failed insert does not
		// leave the customer billed without a local record.
		if cancelErr := s.Provider.CancelSubscription(ctx, result.SubscriptionRef, false); cancelErr != nil {
			s.Logger.Errorw("failed to roll back provider subscription",
				"provider_subscription_id", result.SubscriptionRef,
				"error", cancelErr,
			)
		}
		s.ErrorLog.Log(payment.FromSubscriptionOp(err, "create_subscription"), map[string]any{
			"source":      "store",
			"customer_id": req.CustomerID,
		})
		return nil, err
	}

	s.Logger.Infow("subscription created",
		"subscription_id", sub.ID,
		"customer_id", sub.CustomerID,
		"plan_id", sub.PlanID,
		"status", sub.Status,
	)

	sub.Plan = p
	return dto.NewSubscriptionResponse(sub, p), nil
}

func (s *subscriptionService) UpdateSubscription(ctx context.Context, id string, req *dto.UpdateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, payment.FromSubscriptionOp(err, "update_subscription")
	}

	if req.CancelAtPeriodEnd != nil && *req.CancelAtPeriodEnd != sub.CancelAtPeriodEnd {
		if *req.CancelAtPeriodEnd {
			if !sub.CanCancel() {
				return nil, ierr.NewError("subscription cannot be canceled").
					WithHint("Subscription cannot be canceled in its current state").
					Mark(ierr.ErrInvalidOperation)
			}
			if err := s.providerCancel(ctx, sub.ProviderSubscriptionID, true); err != nil {
				return nil, err
			}
		} else {
			if err := s.providerReactivate(ctx, sub.ProviderSubscriptionID); err != nil {
				return nil, err
			}
		}
		sub.CancelAtPeriodEnd = *req.CancelAtPeriodEnd
	}

	if req.Metadata != nil {
		sub.Metadata = sub.Metadata.Merge(req.Metadata)
	}

	sub.UpdatedAt = time.Now().UTC()
	sub.UpdatedBy = types.GetUserID(ctx)
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, sub), nil
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, id string, atPeriodEnd bool) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, payment.FromSubscriptionOp(err, "cancel_subscription")
	}

	if !sub.CanCancel() {
		return nil, ierr.NewError("subscription cannot be canceled").
			WithHint("Subscription cannot be canceled in its current state").
			Mark(ierr.ErrInvalidOperation)
	}

	if err := s.providerCancel(ctx, sub.ProviderSubscriptionID, atPeriodEnd); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if atPeriodEnd {
		sub.CancelAtPeriodEnd = true
	} else {
		sub.Status = types.SubscriptionStatusCanceled
		sub.CanceledAt = &now
	}
	sub.UpdatedAt = now
	sub.UpdatedBy = types.GetUserID(ctx)

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription canceled",
		"subscription_id", sub.ID,
		"at_period_end", atPeriodEnd,
	)
	return s.toResponse(ctx, sub), nil
}

func (s *subscriptionService) ReactivateSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, payment.FromSubscriptionOp(err, "reactivate_subscription")
	}

	if !sub.CanReactivate() {
		return nil, ierr.NewError("subscription cannot be reactivated").
			WithHint("Subscription cannot be reactivated in its current state").
			Mark(ierr.ErrInvalidOperation)
	}

	if err := s.providerReactivate(ctx, sub.ProviderSubscriptionID); err != nil {
		return nil, err
	}

	sub.Status = types.SubscriptionStatusActive
	sub.CancelAtPeriodEnd = false
	sub.CanceledAt = nil
	sub.UpdatedAt = time.Now().UTC()
	sub.UpdatedBy = types.GetUserID(ctx)

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription reactivated", "subscription_id", sub.ID)
	return s.toResponse(ctx, sub), nil
}

func (s *subscriptionService) ChangeSubscriptionPlan(ctx context.Context, id string, req *dto.ChangeSubscriptionPlanRequest) (*dto.ChangeSubscriptionPlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, payment.FromSubscriptionOp(err, "change_subscription_plan")
	}

	currentPlan, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, payment.FromSubscriptionOp(err, "change_subscription_plan")
	}

	newPlan, err := s.PlanRepo.Get(ctx, req.NewPlanID)
	if err != nil {
		return nil, payment.FromSubscriptionOp(err, "change_subscription_plan")
	}

	if err := subscription.ValidatePlanChange(sub, newPlan); err != nil {
		return nil, err
	}

	assessment := subscription.AssessPlanChange(currentPlan, newPlan)
	if !assessment.Valid {
		return nil, ierr.NewError("plan change rejected").
			WithHint("Selected plan is not currently available").
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	prorationResult, err := s.proration.Calculate(ctx, proration.Params{
		CurrentPlan:   currentPlan,
		NewPlan:       newPlan,
		DaysRemaining: sub.DaysUntilRenewalAt(now),
	})
	if err != nil {
		return nil, err
	}

	changeType := assessment.ChangeType
	prorationBehavior := types.ProrationBehaviorCreateProrations
	effectiveDate := now
	if changeType == types.PlanChangeTypeDowngrade {
		// Downgrades take effect at renewal, so nothing is prorated now.
		prorationBehavior = types.ProrationBehaviorNone
		effectiveDate = sub.CurrentPeriodEnd
	}

	err = s.Retry.Execute(ctx, "change_subscription_plan", func(ctx context.Context) error {
		return s.Provider.UpdateSubscription(ctx, provider.UpdateSubscriptionParams{
			SubscriptionRef:   sub.ProviderSubscriptionID,
			NewPriceRef:       newPlan.ProviderPriceID,
			ProrationBehavior: prorationBehavior,
		})
	})
	if err != nil {
		return nil, err
	}

	sub.PlanID = newPlan.ID
	sub.UpdatedAt = now
	sub.UpdatedBy = types.GetUserID(ctx)
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription plan changed",
		"subscription_id", sub.ID,
		"from_plan_id", currentPlan.ID,
		"to_plan_id", newPlan.ID,
		"change_type", changeType,
		"net_amount", prorationResult.NetAmount,
	)

	return &dto.ChangeSubscriptionPlanResponse{
		Subscription:    dto.NewSubscriptionResponse(sub, newPlan),
		ChangeType:      changeType,
		Warnings:        assessment.Warnings,
		EffectiveDate:   effectiveDate,
		ProrationAmount: prorationResult.NetAmount,
	}, nil
}

func (s *subscriptionService) providerCancel(ctx context.Context, subscriptionRef string, atPeriodEnd bool) error {
	return s.Retry.Execute(ctx, "cancel_subscription", func(ctx context.Context) error {
		return s.Provider.CancelSubscription(ctx, subscriptionRef, atPeriodEnd)
	})
}

func (s *subscriptionService) providerReactivate(ctx context.Context, subscriptionRef string) error {
	return s.Retry.Execute(ctx, "reactivate_subscription", func(ctx context.Context) error {
		return s.Provider.ReactivateSubscription(ctx, subscriptionRef)
	})
}

// toResponse joins the subscription's plan when it can be loaded. A
// missing plan degrades the response instead of failing the read.
func (s *subscriptionService) toResponse(ctx context.Context, sub *subscription.Subscription) *dto.SubscriptionResponse {
	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		s.Logger.Warnw("failed to load plan for subscription",
			"subscription_id", sub.ID,
			"plan_id", sub.PlanID,
			"error", err,
		)
		p = nil
	}
	return dto.NewSubscriptionResponse(sub, p)
}
