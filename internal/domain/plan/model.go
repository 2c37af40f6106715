package plan

import (
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
)

// Plan is a purchasable subscription plan. Price is in minor currency
// units. Tier orders plans for upgrade and downgrade comparisons.
type Plan struct {
	ID              string                `db:"id" json:"id"`
	Name            string                `db:"name" json:"name"`
	Description     string                `db:"description" json:"description"`
	Price           int64                 `db:"price" json:"price"`
	Currency        string                `db:"currency" json:"currency"`
	Interval        types.BillingInterval `db:"interval" json:"interval"`
	IntervalCount   int                   `db:"interval_count" json:"interval_count"`
	Tier            int                   `db:"tier" json:"tier"`
	Features        []string              `db:"features" json:"features"`
	Active          bool                  `db:"active" json:"active"`
	TrialPeriodDays int                   `db:"trial_period_days" json:"trial_period_days"`
	ProviderPriceID string                `db:"provider_price_id" json:"provider_price_id"`
	Metadata        types.Metadata        `db:"metadata" json:"metadata"`
	types.BaseModel
}

// HasFeature reports whether the plan includes the named feature.
func (p *Plan) HasFeature(feature string) bool {
	return lo.Contains(p.Features, feature)
}

// LostFeatures returns the features of p that the other plan lacks,
// in p's feature order.
func (p *Plan) LostFeatures(other *Plan) []string {
	lost := make([]string, 0)
	for _, feature := range p.Features {
		if !other.HasFeature(feature) {
			lost = append(lost, feature)
		}
	}
	return lost
}
