package dto

import (
	"takoyaki/internal/core/id"
	"takoyaki/internal/core/types"
	"takoyaki/internal/domain/catalogs/item"
)

// CreateItemRequest creates a stock item.
type CreateItemRequest struct {
	Code           string   `json:"code,omitempty"`
	Name           string   `json:"name" binding:"required"`
	BaseUnit       string   `json:"baseUnit" binding:"required"`
	CostGroup      string   `json:"costGroup" binding:"required"`
	SupplierID     *string  `json:"supplierId,omitempty"`
	ReorderPoint   float64  `json:"reorderPoint,omitempty"`
	ReferencePrice *string  `json:"referencePrice,omitempty"`
	IsFixed        bool     `json:"isFixed,omitempty"`
}

// ToEntity converts the request to a domain item.
func (r *CreateItemRequest) ToEntity() (*item.Item, error) {
	it := item.NewItem(r.Code, r.Name, r.BaseUnit, item.CostGroup(r.CostGroup))
	it.ReorderPoint = r.ReorderPoint
	it.IsFixed = r.IsFixed

	if r.SupplierID != nil {
		supplierID, err := id.Parse(*r.SupplierID)
		if err != nil {
			return nil, err
		}
		it.SupplierID = &supplierID
	}
	if r.ReferencePrice != nil {
		price, err := types.NewMoneyFromString(*r.ReferencePrice)
		if err != nil {
			return nil, err
		}
		it.ReferencePrice = &price
	}
	return it, nil
}

// UpdateItemRequest patches a stock item. Nil fields stay unchanged.
type UpdateItemRequest struct {
	Name           *string  `json:"name,omitempty"`
	BaseUnit       *string  `json:"baseUnit,omitempty"`
	CostGroup      *string  `json:"costGroup,omitempty"`
	SupplierID     *string  `json:"supplierId,omitempty"`
	ReorderPoint   *float64 `json:"reorderPoint,omitempty"`
	ReferencePrice *string  `json:"referencePrice,omitempty"`
	IsFixed        *bool    `json:"isFixed,omitempty"`
	Active         *bool    `json:"active,omitempty"`
}

// ApplyTo applies the patch to an existing item.
func (r *UpdateItemRequest) ApplyTo(it *item.Item) error {
	if r.Name != nil {
		it.Name = *r.Name
	}
	if r.BaseUnit != nil {
		it.BaseUnit = *r.BaseUnit
	}
	if r.CostGroup != nil {
		it.CostGroup = item.CostGroup(*r.CostGroup)
	}
	if r.SupplierID != nil {
		supplierID, err := id.Parse(*r.SupplierID)
		if err != nil {
			return err
		}
		it.SupplierID = &supplierID
	}
	if r.ReorderPoint != nil {
		it.ReorderPoint = *r.ReorderPoint
	}
	if r.ReferencePrice != nil {
		price, err := types.NewMoneyFromString(*r.ReferencePrice)
		if err != nil {
			return err
		}
		it.ReferencePrice = &price
	}
	if r.IsFixed != nil {
		it.IsFixed = *r.IsFixed
	}
	if r.Active != nil {
		it.Active = *r.Active
	}
	return nil
}
