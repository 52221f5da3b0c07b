// Package costing computes weighted-average unit costs for inventory
// valuation. The average blends the opening valuation from the most
// recent monthly stocktake with purchases made during the period.
package costing

import (
	"context"
	"time"

	"takoyaki/internal/core/id"
	"takoyaki/internal/core/types"
	"takoyaki/pkg/logger"
)

// Opening is the valuation carried over from a prior monthly stocktake.
type Opening struct {
	Qty      float64
	UnitCost types.Money
	TakenAt  time.Time
}

// PurchaseTotals is the period purchase activity of one item.
// Lines without a unit price are tallied separately so the engine can
// substitute the reference price for them.
type PurchaseTotals struct {
	PricedQty    float64
	PricedAmount types.Money
	UnpricedQty  float64
}

// Repository is the read contract the costing engine needs.
type Repository interface {
	// OpeningBalance returns the valuation of the item in the latest
	// posted monthly stocktake strictly before the given moment, or nil
	// if no such stocktake exists.
	OpeningBalance(ctx context.Context, itemID id.ID, before time.Time) (*Opening, error)

	// PurchaseActivity sums the item's posted purchase lines dated in
	// [from, to). A zero from means all history.
	PurchaseActivity(ctx context.Context, itemID id.ID, from, to time.Time) (PurchaseTotals, error)

	// ReferencePrice returns the item's catalog reference price.
	// The second return is false when the item has no price set.
	ReferencePrice(ctx context.Context, itemID id.ID) (types.Money, bool, error)
}

// Result is a unit cost with provenance flags.
type Result struct {
	UnitCost types.Money

	// UsedReferencePrice is set when any unpriced purchase line had
	// the reference price substituted for its amount.
	UsedReferencePrice bool

	// IsFallback is set when no quantity basis existed and the cost
	// degraded to the reference price (or zero when none is set).
	IsFallback bool

	// Initial is set when the item had no prior stocktake and the
	// purchase window was widened to all history.
	Initial bool

	OpeningQty   float64
	PurchasedQty float64
}

// Service computes unit costs.
type Service struct {
	repo Repository
}

// NewService creates a costing service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// WeightedAverageUnitCost computes the item's unit cost for the period
// ending at periodEnd:
//
//	avg = (openingQty*openingCost + purchaseAmount) / (openingQty + purchasedQty)
//
// The opening side comes from the latest monthly stocktake before
// periodStart. Unpriced purchase lines contribute quantity valued at
// the catalog reference price. When the item was never counted, the
// purchase window opens to all history. When the denominator is zero
// the cost falls back to the reference price, or zero without one —
// the result is always defined.
func (s *Service) WeightedAverageUnitCost(ctx context.Context, itemID id.ID, periodStart, periodEnd time.Time) (Result, error) {
	opening, err := s.repo.OpeningBalance(ctx, itemID, periodStart)
	if err != nil {
		return Result{}, err
	}
	return s.blend(ctx, itemID, opening, periodStart, periodEnd)
}

// UnitCostAsOf values the item at a stocktake boundary: the purchase
// window starts at the previous monthly stocktake (strictly before
// asOf) and ends at asOf. Used when valuing stocktake lines.
func (s *Service) UnitCostAsOf(ctx context.Context, itemID id.ID, asOf time.Time) (Result, error) {
	opening, err := s.repo.OpeningBalance(ctx, itemID, asOf)
	if err != nil {
		return Result{}, err
	}
	from := asOf
	if opening != nil {
		from = opening.TakenAt
	}
	return s.blend(ctx, itemID, opening, from, asOf)
}

func (s *Service) blend(ctx context.Context, itemID id.ID, opening *Opening, periodStart, periodEnd time.Time) (Result, error) {
	var res Result
	from := periodStart
	if opening == nil {
		// First period for this item: no opening valuation exists, so
		// every purchase up to the cutoff is part of the average.
		res.Initial = true
		from = time.Time{}
	} else {
		res.OpeningQty = opening.Qty
	}

	totals, err := s.repo.PurchaseActivity(ctx, itemID, from, periodEnd)
	if err != nil {
		return Result{}, err
	}

	purchasedQty := totals.PricedQty
	purchaseAmount := totals.PricedAmount

	if totals.UnpricedQty > types.QtyEpsilon {
		refPrice, ok, err := s.repo.ReferencePrice(ctx, itemID)
		if err != nil {
			return Result{}, err
		}
		if ok {
			purchaseAmount = purchaseAmount.Add(types.MulQty(refPrice, totals.UnpricedQty))
		} else {
			logger.Warn(ctx, "unpriced purchases without reference price, valued at zero",
				"item_id", itemID, "qty", totals.UnpricedQty)
		}
		purchasedQty += totals.UnpricedQty
		res.UsedReferencePrice = true
	}
	res.PurchasedQty = purchasedQty

	denominator := res.OpeningQty + purchasedQty
	if denominator > types.QtyEpsilon {
		numerator := purchaseAmount
		if opening != nil {
			numerator = numerator.Add(types.MulQty(opening.UnitCost, opening.Qty))
		}
		res.UnitCost = types.DivQty(numerator, denominator)
		return res, nil
	}

	// No stock ever existed: degrade to the catalog reference price.
	res.IsFallback = true
	refPrice, ok, err := s.repo.ReferencePrice(ctx, itemID)
	if err != nil {
		return Result{}, err
	}
	if ok {
		res.UnitCost = refPrice
		return res, nil
	}

	logger.Warn(ctx, "no cost basis for item, defaulting to zero", "item_id", itemID)
	res.UnitCost = types.Zero()
	return res, nil
}
