// Package item provides the inventory item catalog: ingredients,
// packaging and supplies tracked in the ledger.
package item

import (
	"context"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/core/types"
)

// CostGroup classifies an item for period cost reporting.
type CostGroup string

const (
	// GroupFood items feed the food-cost ratio (ingredients, sauces).
	GroupFood CostGroup = "FOOD"
	// GroupSupplies items are consumables outside the food cost
	// (boxes, skewers, napkins).
	GroupSupplies CostGroup = "SUPPLIES"
)

// Item is a stock-tracked inventory position.
type Item struct {
	entity.Catalog

	// SupplierID is the default supplier reference
	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	// BaseUnit is the unit all ledger quantities are expressed in
	// (e.g. "g", "ml", "pcs")
	BaseUnit string `db:"base_unit" json:"baseUnit"`

	// CostGroup routes the item into the right report bucket
	CostGroup CostGroup `db:"cost_group" json:"costGroup"`

	// ReorderPoint triggers a low-stock alert when on-hand drops below it
	ReorderPoint float64 `db:"reorder_point" json:"reorderPoint"`

	// ReferencePrice is the fallback unit cost when no purchase
	// history exists. Nil means no fallback.
	ReferencePrice *types.Money `db:"reference_price" json:"referencePrice,omitempty"`

	// IsFixed marks items replenished on a fixed schedule rather than
	// by stock level; excluded from reorder alerts.
	IsFixed bool `db:"is_fixed" json:"isFixed"`

	// Active items appear in purchase and count pickers
	Active bool `db:"active" json:"active"`
}

// NewItem creates an active Item with required fields.
func NewItem(code, name, baseUnit string, group CostGroup) *Item {
	return &Item{
		Catalog:   entity.NewCatalog(code, name),
		BaseUnit:  baseUnit,
		CostGroup: group,
		Active:    true,
	}
}

// Validate implements entity.Validatable.
func (i *Item) Validate(ctx context.Context) error {
	if err := i.Catalog.Validate(ctx); err != nil {
		return err
	}

	if i.BaseUnit == "" {
		return apperror.NewValidation("base unit is required").
			WithDetail("field", "baseUnit")
	}

	switch i.CostGroup {
	case GroupFood, GroupSupplies:
	default:
		return apperror.NewValidation("invalid cost group").
			WithDetail("field", "costGroup").
			WithDetail("value", string(i.CostGroup))
	}

	if i.ReorderPoint < 0 {
		return apperror.NewValidation("reorder point cannot be negative").
			WithDetail("field", "reorderPoint")
	}

	if i.ReferencePrice != nil && i.ReferencePrice.IsNegative() {
		return apperror.NewValidation("reference price cannot be negative").
			WithDetail("field", "referencePrice")
	}

	return nil
}

// CountsTowardFoodCost reports whether the item belongs to the
// food-cost numerator.
func (i *Item) CountsTowardFoodCost() bool {
	return i.CostGroup == GroupFood
}
