package dto

import (
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/types"
)

type PlanResponse struct {
	*plan.Plan
	FormattedPrice string `json:"formatted_price"`
}

func NewPlanResponse(p *plan.Plan) *PlanResponse {
	if p == nil {
		return nil
	}
	return &PlanResponse{
		Plan:           p,
		FormattedPrice: types.FormatAmount(p.Price, p.Currency),
	}
}

type ListPlansResponse struct {
	Plans []*PlanResponse `json:"plans"`
	Total int             `json:"total"`
}

func NewListPlansResponse(plans []*plan.Plan) *ListPlansResponse {
	resp := &ListPlansResponse{
		Plans: make([]*PlanResponse, 0, len(plans)),
		Total: len(plans),
	}
	for _, p := range plans {
		resp.Plans = append(resp.Plans, NewPlanResponse(p))
	}
	return resp
}
