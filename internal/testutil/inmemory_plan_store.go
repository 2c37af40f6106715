package testutil

import (
	"context"

	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	*InMemoryStore[*plan.Plan]
}

// NewInMemoryPlanStore creates a new in-memory plan store
func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		InMemoryStore: NewInMemoryStore[*plan.Plan](),
	}
}

func (s *InMemoryPlanStore) Create(ctx context.Context, p *plan.Plan) error {
	if p == nil {
		return ierr.NewError("plan cannot be nil").
			WithHint("Plan data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("plan not found").
			WithHintf("Plan %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return p, nil
}

func (s *InMemoryPlanStore) List(ctx context.Context, filter *types.PlanFilter) ([]*plan.Plan, error) {
	plans, err := s.InMemoryStore.List(ctx, filter, nil, nil)
	if err != nil {
		return nil, err
	}

	plans = plan.Filter(plans, filter)
	if filter != nil && filter.SortBy != "" {
		plans = plan.Sort(plans, filter.SortBy, filter.Order)
	} else {
		plans = plan.Sort(plans, types.PlanSortByTier, types.SortOrderAsc)
	}
	return plans, nil
}

func (s *InMemoryPlanStore) Update(ctx context.Context, p *plan.Plan) error {
	if err := s.InMemoryStore.Update(ctx, p.ID, p); err != nil {
		return ierr.NewError("plan not found").
			WithHintf("Plan %s does not exist", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryPlanStore) Delete(ctx context.Context, id string) error {
	if err := s.InMemoryStore.Delete(ctx, id); err != nil {
		return ierr.NewError("plan not found").
			WithHintf("Plan %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
