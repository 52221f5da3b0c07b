package dto

import (
	"time"

	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/core/types"
	"takoyaki/internal/domain/documents/purchase"
)

// CreatePurchaseRequest creates a purchase document. SupplierID may be
// omitted for receipts with no supplier on record.
type CreatePurchaseRequest struct {
	Number          string                `json:"number,omitempty"`
	Date            time.Time             `json:"date" binding:"required"`
	Location        string                `json:"location" binding:"required"`
	SupplierID      *string               `json:"supplierId,omitempty"`
	Note            string                `json:"note,omitempty"`
	Lines           []PurchaseLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostImmediately bool                  `json:"postImmediately,omitempty"`
}

// PurchaseLineRequest is one received item. UnitPrice may be omitted
// when the invoice has not arrived yet.
type PurchaseLineRequest struct {
	ItemID    string  `json:"itemId" binding:"required"`
	Qty       float64 `json:"qty" binding:"required,gt=0"`
	UnitPrice *string `json:"unitPrice,omitempty"`
}

// ToEntity converts the request to a domain purchase.
func (r *CreatePurchaseRequest) ToEntity() (*purchase.Purchase, error) {
	var supplierID *id.ID
	if r.SupplierID != nil {
		parsed, err := id.Parse(*r.SupplierID)
		if err != nil {
			return nil, err
		}
		supplierID = &parsed
	}

	doc := purchase.New(entity.Location(r.Location), supplierID)
	doc.Number = r.Number
	doc.Date = r.Date
	doc.Note = r.Note

	for _, line := range r.Lines {
		itemID, err := id.Parse(line.ItemID)
		if err != nil {
			return nil, err
		}
		var unitPrice *types.Money
		if line.UnitPrice != nil {
			price, err := types.NewMoneyFromString(*line.UnitPrice)
			if err != nil {
				return nil, err
			}
			unitPrice = &price
		}
		doc.AddLine(itemID, line.Qty, unitPrice)
	}
	return doc, nil
}

// UpdatePurchaseRequest patches a draft purchase. A non-nil Lines
// replaces the whole line set.
type UpdatePurchaseRequest struct {
	Number     *string               `json:"number,omitempty"`
	Date       *time.Time            `json:"date,omitempty"`
	Location   *string               `json:"location,omitempty"`
	SupplierID *string               `json:"supplierId,omitempty"`
	Note       *string               `json:"note,omitempty"`
	Lines      []PurchaseLineRequest `json:"lines,omitempty" binding:"dive"`
}

// ApplyTo applies the patch to an existing purchase.
func (r *UpdatePurchaseRequest) ApplyTo(doc *purchase.Purchase) error {
	if r.Number != nil {
		doc.Number = *r.Number
	}
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.Location != nil {
		doc.Location = entity.Location(*r.Location)
	}
	if r.SupplierID != nil {
		supplierID, err := id.Parse(*r.SupplierID)
		if err != nil {
			return err
		}
		doc.SupplierID = &supplierID
	}
	if r.Note != nil {
		doc.Note = *r.Note
	}
	if r.Lines != nil {
		doc.Lines = nil
		for _, line := range r.Lines {
			itemID, err := id.Parse(line.ItemID)
			if err != nil {
				return err
			}
			var unitPrice *types.Money
			if line.UnitPrice != nil {
				price, err := types.NewMoneyFromString(*line.UnitPrice)
				if err != nil {
					return err
				}
				unitPrice = &price
			}
			doc.AddLine(itemID, line.Qty, unitPrice)
		}
	}
	return nil
}
