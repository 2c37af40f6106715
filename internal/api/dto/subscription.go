package dto

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/billforge/billforge/internal/validator"
)

type CreateSubscriptionRequest struct {
	CustomerID string         `json:"customer_id" validate:"required"`
	PlanID     string         `json:"plan_id" validate:"required"`
	TrialDays  int            `json:"trial_days,omitempty"`
	PromoCode  string         `json:"promo_code,omitempty"`
	Metadata   types.Metadata `json:"metadata,omitempty"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := validator.ValidateTrialDays(r.TrialDays); err != nil {
		return err
	}
	if r.PromoCode != "" {
		code, err := validator.SanitizePromoCode(r.PromoCode)
		if err != nil {
			return err
		}
		r.PromoCode = code
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

func (r *CreateSubscriptionRequest) ToSubscription(ctx context.Context) *subscription.Subscription {
	return &subscription.Subscription{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		CustomerID: r.CustomerID,
		PlanID:     r.PlanID,
		Status:     types.SubscriptionStatusIncomplete,
		Metadata:   r.Metadata,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
}

type UpdateSubscriptionRequest struct {
	CancelAtPeriodEnd *bool          `json:"cancel_at_period_end,omitempty"`
	Metadata          types.Metadata `json:"metadata,omitempty"`
}

func (r *UpdateSubscriptionRequest) Validate() error {
	if r.CancelAtPeriodEnd == nil && r.Metadata == nil {
		return ierr.NewError("empty update request").
			WithHint("At least one field must be provided").
			Mark(ierr.ErrValidation)
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

type CancelSubscriptionRequest struct {
	AtPeriodEnd bool `json:"at_period_end"`
}

type ChangeSubscriptionPlanRequest struct {
	NewPlanID string `json:"new_plan_id" validate:"required"`
}

func (r *ChangeSubscriptionPlanRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type SubscriptionResponse struct {
	*subscription.Subscription
	Plan    *PlanResponse         `json:"plan,omitempty"`
	Summary *subscription.Summary `json:"summary,omitempty"`
}

// NewSubscriptionResponse builds a response with the joined plan and a
// display summary computed as of now.
func NewSubscriptionResponse(sub *subscription.Subscription, p *plan.Plan) *SubscriptionResponse {
	if sub == nil {
		return nil
	}
	resp := &SubscriptionResponse{Subscription: sub}
	if p != nil {
		resp.Plan = NewPlanResponse(p)
		sub.Plan = p
	}
	resp.Summary = sub.BuildSummaryAt(time.Now().UTC())
	return resp
}

type ChangeSubscriptionPlanResponse struct {
	Subscription    *SubscriptionResponse `json:"subscription"`
	ChangeType      types.PlanChangeType  `json:"change_type"`
	Warnings        []string              `json:"warnings,omitempty"`
	EffectiveDate   time.Time             `json:"effective_date"`
	ProrationAmount int64                 `json:"proration_amount"`
}
