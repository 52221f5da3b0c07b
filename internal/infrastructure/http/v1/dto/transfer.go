package dto

import (
	"time"

	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/domain/documents/transfer"
)

// CreateTransferRequest creates a transfer document.
type CreateTransferRequest struct {
	Number          string                `json:"number,omitempty"`
	Date            time.Time             `json:"date" binding:"required"`
	From            string                `json:"from" binding:"required"`
	To              string                `json:"to" binding:"required"`
	Note            string                `json:"note,omitempty"`
	Lines           []TransferLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostImmediately bool                  `json:"postImmediately,omitempty"`
}

// TransferLineRequest is one moved item.
type TransferLineRequest struct {
	ItemID string  `json:"itemId" binding:"required"`
	Qty    float64 `json:"qty" binding:"required,gt=0"`
}

// ToEntity converts the request to a domain transfer.
func (r *CreateTransferRequest) ToEntity() (*transfer.Transfer, error) {
	doc := transfer.New(entity.Location(r.From), entity.Location(r.To))
	doc.Number = r.Number
	doc.Date = r.Date
	doc.Note = r.Note

	for _, line := range r.Lines {
		itemID, err := id.Parse(line.ItemID)
		if err != nil {
			return nil, err
		}
		doc.AddLine(itemID, line.Qty)
	}
	return doc, nil
}

// UpdateTransferRequest patches a draft transfer.
type UpdateTransferRequest struct {
	Number *string               `json:"number,omitempty"`
	Date   *time.Time            `json:"date,omitempty"`
	From   *string               `json:"from,omitempty"`
	To     *string               `json:"to,omitempty"`
	Note   *string               `json:"note,omitempty"`
	Lines  []TransferLineRequest `json:"lines,omitempty" binding:"dive"`
}

// ApplyTo applies the patch to an existing transfer.
func (r *UpdateTransferRequest) ApplyTo(doc *transfer.Transfer) error {
	if r.Number != nil {
		doc.Number = *r.Number
	}
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.From != nil {
		doc.From = entity.Location(*r.From)
	}
	if r.To != nil {
		doc.To = entity.Location(*r.To)
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
			doc.AddLine(itemID, line.Qty)
		}
	}
	return nil
}
