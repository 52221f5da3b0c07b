// Package stocktake provides the Stocktake document: a physical count
// that reconciles the ledger against reality and values the counted
// stock at the weighted-average unit cost.
package stocktake

import (
	"context"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/core/types"
)

// Scope classifies the count cadence.
type Scope string

const (
	// ScopeMonthly counts feed period valuation: their line valuations
	// become the opening balance of the next costing period.
	ScopeMonthly Scope = "MONTHLY"
	// ScopeWeekly counts cover manually-tracked items only and never
	// participate in valuation.
	ScopeWeekly Scope = "WEEKLY"
)

// Stocktake records counted quantities at one location. Posting writes
// one ADJUST entry per line whose counted quantity differs from the
// ledger-derived theoretical quantity.
type Stocktake struct {
	entity.Document

	Scope    Scope           `db:"scope" json:"scope"`
	Location entity.Location `db:"location" json:"location"`

	// Lines is the table part
	Lines []Line `db:"-" json:"lines"`
}

// Line is one counted item. Theoretical, delta and valuation fields
// are computed during posting.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	// CountedQty is the physically counted quantity
	CountedQty float64 `db:"counted_qty" json:"countedQty"`

	// TheoreticalQty is the ledger-derived quantity at posting time
	TheoreticalQty float64 `db:"theoretical_qty" json:"theoreticalQty"`

	// DeltaQty = CountedQty - TheoreticalQty
	DeltaQty float64 `db:"delta_qty" json:"deltaQty"`

	// UnitCost is the weighted-average cost at the count boundary
	UnitCost types.Money `db:"unit_cost" json:"unitCost"`

	// Amount = CountedQty x UnitCost
	Amount types.Money `db:"line_amount" json:"amount"`

	// CostIsFallback marks lines valued at the reference price or zero
	// for lack of purchase history
	CostIsFallback bool `db:"cost_is_fallback" json:"costIsFallback"`
}

// New creates a Stocktake document.
func New(scope Scope, location entity.Location) *Stocktake {
	return &Stocktake{
		Document: entity.NewDocument(),
		Scope:    scope,
		Location: location,
		Lines:    make([]Line, 0),
	}
}

// AddLine appends a counted line.
func (s *Stocktake) AddLine(itemID id.ID, countedQty float64) {
	s.Lines = append(s.Lines, Line{
		LineID:     id.New(),
		LineNo:     len(s.Lines) + 1,
		ItemID:     itemID,
		CountedQty: countedQty,
		UnitCost:   types.Zero(),
		Amount:     types.Zero(),
	})
}

// Validate implements entity.Validatable.
func (s *Stocktake) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if s.Scope != ScopeMonthly && s.Scope != ScopeWeekly {
		return apperror.NewValidation("unknown stocktake scope").
			WithDetail("field", "scope").WithDetail("value", string(s.Scope))
	}
	if !entity.ValidLocation(s.Location) {
		return apperror.NewValidation("unknown location").
			WithDetail("field", "location").WithDetail("value", string(s.Location))
	}

	if len(s.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	seen := make(map[id.ID]struct{}, len(s.Lines))
	for i, line := range s.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("item is required").
				WithDetail("field", "lines").WithLine(i + 1)
		}
		if line.CountedQty < 0 {
			return apperror.NewValidation("counted quantity cannot be negative").
				WithDetail("field", "lines").WithLine(i + 1)
		}
		if _, dup := seen[line.ItemID]; dup {
			return apperror.NewValidation("item counted twice").
				WithDetail("field", "lines").WithLine(i + 1)
		}
		seen[line.ItemID] = struct{}{}
	}

	return nil
}

// GetRefType returns the ledger reference type.
func (s *Stocktake) GetRefType() entity.RefType {
	return entity.RefStocktake
}
