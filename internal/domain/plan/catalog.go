package plan

import (
	"sort"
	"strings"

	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Sort returns a new slice ordered by the given field. The input is not
// modified and the sort is stable.
func Sort(plans []*Plan, sortBy types.PlanSortBy, order types.SortOrder) []*Plan {
	sorted := make([]*Plan, len(plans))
	copy(sorted, plans)

	sort.SliceStable(sorted, func(i, j int) bool {
		var cmp int
		switch sortBy {
		case types.PlanSortByPrice:
			cmp = compareInt64(sorted[i].Price, sorted[j].Price)
		case types.PlanSortByName:
			cmp = strings.Compare(sorted[i].Name, sorted[j].Name)
		default:
			cmp = compareInt64(int64(sorted[i].Tier), int64(sorted[j].Tier))
		}
		if order == types.SortOrderDesc {
			return cmp > 0
		}
		return cmp < 0
	})

	return sorted
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Filter returns the plans matching every set criterion in the filter.
// A nil filter matches everything.
func Filter(plans []*Plan, filter *types.PlanFilter) []*Plan {
	if filter == nil {
		return plans
	}

	matched := make([]*Plan, 0, len(plans))
	for _, p := range plans {
		if filter.Active != nil && p.Active != *filter.Active {
			continue
		}
		if filter.Interval != nil && p.Interval != *filter.Interval {
			continue
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			continue
		}
		if filter.MinPrice != nil && p.Price < *filter.MinPrice {
			continue
		}
		if !hasAllFeatures(p, filter.Features) {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}

func hasAllFeatures(p *Plan, features []string) bool {
	for _, feature := range features {
		if !p.HasFeature(feature) {
			return false
		}
	}
	return true
}

// Comparison is a feature matrix across a set of plans, used to render
// side-by-side plan tables.
type Comparison struct {
	Features     []string          `json:"features"`
	PlanFeatures []map[string]bool `json:"plan_features"`
}

// Compare builds a feature matrix for the given plans. Features are the
// union across all plans, sorted alphabetically.
func Compare(plans []*Plan) *Comparison {
	seen := make(map[string]struct{})
	features := make([]string, 0)
	for _, p := range plans {
		for _, feature := range p.Features {
			if _, ok := seen[feature]; !ok {
				seen[feature] = struct{}{}
				features = append(features, feature)
			}
		}
	}
	sort.Strings(features)

	planFeatures := make([]map[string]bool, len(plans))
	for i, p := range plans {
		row := make(map[string]bool, len(features))
		for _, feature := range features {
			row[feature] = p.HasFeature(feature)
		}
		planFeatures[i] = row
	}

	return &Comparison{
		Features:     features,
		PlanFeatures: planFeatures,
	}
}

// AnnualSavings describes what a customer saves by paying yearly instead
// of monthly. Amounts are in minor currency units.
type AnnualSavings struct {
	MonthlySavings    decimal.Decimal `json:"monthly_savings"`
	AnnualSavings     int64           `json:"annual_savings"`
	SavingsPercentage int64           `json:"savings_percentage"`
	FormattedSavings  string          `json:"formatted_savings"`
}

// CalculateAnnualSavings compares twelve months of the monthly price
// against the yearly price.
func CalculateAnnualSavings(monthlyPrice, yearlyPrice int64) *AnnualSavings {
	annualCostIfMonthly := monthlyPrice * 12
	annualSavings := annualCostIfMonthly - yearlyPrice
	monthlySavings := decimal.NewFromInt(annualSavings).Div(decimal.NewFromInt(12))

	var savingsPercentage int64
	if annualCostIfMonthly > 0 {
		savingsPercentage = decimal.NewFromInt(annualSavings).
			Div(decimal.NewFromInt(annualCostIfMonthly)).
			Mul(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	}

	return &AnnualSavings{
		MonthlySavings:    monthlySavings,
		AnnualSavings:     annualSavings,
		SavingsPercentage: savingsPercentage,
		FormattedSavings:  types.FormatAmount(annualSavings, "USD"),
	}
}
