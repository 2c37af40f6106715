package supabase

import (
	"context"

	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/types"
	supa "github.com/nedpals/supabase-go"
)

type planRepository struct {
	client *supa.Client
	logger *logger.Logger
}

// NewPlanRepository creates a plan repository backed by the plans table.
func NewPlanRepository(client *supa.Client, log *logger.Logger) plan.Repository {
	return &planRepository{
		client: client,
		logger: log,
	}
}

func (r *planRepository) Create(ctx context.Context, p *plan.Plan) error {
	r.logger.Debugw("creating plan", "plan_id", p.ID)

	var inserted []plan.Plan
	err := r.client.DB.From(plansTable).Insert(p).Execute(&inserted)
	if err != nil {
		return wrapStoreError(err, plansTable)
	}
	return nil
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	var rows []plan.Plan
	err := r.client.DB.From(plansTable).
		Select("*").
		Eq("id", id).
		Execute(&rows)
	if err != nil {
		return nil, wrapStoreError(err, plansTable)
	}
	if len(rows) == 0 {
		return nil, ierr.NewError("plan not found").
			WithHintf("Plan %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return &rows[0], nil
}

func (r *planRepository) List(ctx context.Context, filter *types.PlanFilter) ([]*plan.Plan, error) {
	var rows []plan.Plan
	var err error
	if filter != nil && filter.Active != nil && *filter.Active {
		err = r.client.DB.From(plansTable).Select("*").Eq("active", "true").Execute(&rows)
	} else {
		err = r.client.DB.From(plansTable).Select("*").Execute(&rows)
	}
	if err != nil {
		return nil, wrapStoreError(err, plansTable)
	}

	plans := make([]*plan.Plan, 0, len(rows))
	for i := range rows {
		plans = append(plans, &rows[i])
	}

	// Remaining filter criteria and ordering are applied in process since
	// PostgREST equality filters only cover the active flag.
	plans = plan.Filter(plans, filter)
	if filter != nil && filter.SortBy != "" {
		plans = plan.Sort(plans, filter.SortBy, filter.Order)
	} else {
		plans = plan.Sort(plans, types.PlanSortByTier, types.SortOrderAsc)
	}
	return plans, nil
}

func (r *planRepository) Update(ctx context.Context, p *plan.Plan) error {
	r.logger.Debugw("updating plan", "plan_id", p.ID)

	var updated []plan.Plan
	err := r.client.DB.From(plansTable).
		Update(p).
		Eq("id", p.ID).
		Execute(&updated)
	if err != nil {
		return wrapStoreError(err, plansTable)
	}
	if len(updated) == 0 {
		return ierr.NewError("plan not found").
			WithHintf("Plan %s does not exist", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *planRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debugw("deleting plan", "plan_id", id)

	err := r.client.DB.From(plansTable).
		Delete().
		Eq("id", id).
		Execute(nil)
	if err != nil {
		return wrapStoreError(err, plansTable)
	}
	return nil
}
