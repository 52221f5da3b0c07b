package dto

import (
	"time"

	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/domain/documents/stocktake"
)

// CreateStocktakeRequest creates a stocktake document.
type CreateStocktakeRequest struct {
	Number          string                 `json:"number,omitempty"`
	Date            time.Time              `json:"date" binding:"required"`
	Scope           string                 `json:"scope" binding:"required"`
	Location        string                 `json:"location" binding:"required"`
	Note            string                 `json:"note,omitempty"`
	Lines           []StocktakeLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostImmediately bool                   `json:"postImmediately,omitempty"`
}

// StocktakeLineRequest is one counted item.
type StocktakeLineRequest struct {
	ItemID     string  `json:"itemId" binding:"required"`
	CountedQty float64 `json:"countedQty" binding:"gte=0"`
}

// ToEntity converts the request to a domain stocktake.
func (r *CreateStocktakeRequest) ToEntity() (*stocktake.Stocktake, error) {
	doc := stocktake.New(stocktake.Scope(r.Scope), entity.Location(r.Location))
	doc.Number = r.Number
	doc.Date = r.Date
	doc.Note = r.Note

	for _, line := range r.Lines {
		itemID, err := id.Parse(line.ItemID)
		if err != nil {
			return nil, err
		}
		doc.AddLine(itemID, line.CountedQty)
	}
	return doc, nil
}

// UpdateStocktakeRequest patches a draft stocktake.
type UpdateStocktakeRequest struct {
	Number   *string                `json:"number,omitempty"`
	Date     *time.Time             `json:"date,omitempty"`
	Scope    *string                `json:"scope,omitempty"`
	Location *string                `json:"location,omitempty"`
	Note     *string                `json:"note,omitempty"`
	Lines    []StocktakeLineRequest `json:"lines,omitempty" binding:"dive"`
}

// ApplyTo applies the patch to an existing stocktake.
func (r *UpdateStocktakeRequest) ApplyTo(doc *stocktake.Stocktake) error {
	if r.Number != nil {
		doc.Number = *r.Number
	}
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.Scope != nil {
		doc.Scope = stocktake.Scope(*r.Scope)
	}
	if r.Location != nil {
		doc.Location = entity.Location(*r.Location)
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
			doc.AddLine(itemID, line.CountedQty)
		}
	}
	return nil
}
