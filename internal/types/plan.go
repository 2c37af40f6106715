package types

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/samber/lo"
)

// PlanSortBy selects the field plan listings are ordered by.
type PlanSortBy string

const (
	PlanSortByTier  PlanSortBy = "tier"
	PlanSortByPrice PlanSortBy = "price"
	PlanSortByName  PlanSortBy = "name"
)

func (s PlanSortBy) Validate() error {
	allowed := []PlanSortBy{PlanSortByTier, PlanSortByPrice, PlanSortByName}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid plan sort field").
			WithHintf("Sort field %s is not valid", s).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

func (o SortOrder) Validate() error {
	if o != SortOrderAsc && o != SortOrderDesc {
		return ierr.NewError("invalid sort order").
			WithHintf("Sort order %s is not valid", o).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PlanFilter narrows plan listings. Nil pointer fields are ignored.
type PlanFilter struct {
	Active   *bool            `json:"active,omitempty"`
	Interval *BillingInterval `json:"interval,omitempty"`
	MinPrice *int64           `json:"min_price,omitempty"`
	MaxPrice *int64           `json:"max_price,omitempty"`
	Features []string         `json:"features,omitempty"`
	SortBy   PlanSortBy       `json:"sort_by,omitempty"`
	Order    SortOrder        `json:"order,omitempty"`
}

func (f *PlanFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Interval != nil {
		if err := f.Interval.Validate(); err != nil {
			return err
		}
	}
	if f.SortBy != "" {
		if err := f.SortBy.Validate(); err != nil {
			return err
		}
	}
	if f.Order != "" {
		if err := f.Order.Validate(); err != nil {
			return err
		}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return ierr.NewError("invalid price range").
			WithHint("Minimum price cannot exceed maximum price").
			Mark(ierr.ErrValidation)
	}
	return nil
}
