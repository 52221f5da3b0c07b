// Package purchase provides the Purchase document: goods received into
// a location, optionally tied to a supplier.
package purchase

import (
	"context"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/core/types"
	"takoyaki/internal/domain/posting"
)

// Purchase records incoming goods. Posting writes one positive
// PURCHASE entry per line at the document's location.
type Purchase struct {
	entity.Document

	// Location the goods arrive at
	Location entity.Location `db:"location" json:"location"`

	// SupplierID references the supplier catalog; nil for cash-and-carry
	// receipts with no supplier on record
	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	// TotalAmount is the sum of line amounts (calculated)
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Lines is the table part
	Lines []Line `db:"-" json:"lines"`
}

// Line is one purchased position. The unit price is optional: receipts
// are often entered before the invoice arrives. The costing engine
// values unpriced lines at the item's reference price.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	// Qty in the item's base unit
	Qty float64 `db:"qty" json:"qty"`

	// UnitPrice per base unit; nil when unknown
	UnitPrice *types.Money `db:"unit_price" json:"unitPrice,omitempty"`

	// Amount is Qty x UnitPrice; nil for unpriced lines
	Amount *types.Money `db:"line_amount" json:"amount,omitempty"`
}

// New creates a Purchase document. supplierID may be nil.
func New(location entity.Location, supplierID *id.ID) *Purchase {
	return &Purchase{
		Document:    entity.NewDocument(),
		Location:    location,
		SupplierID:  supplierID,
		TotalAmount: types.Zero(),
		Lines:       make([]Line, 0),
	}
}

// AddLine appends a line and recalculates the total. unitPrice may be
// nil when the price is not yet known.
func (p *Purchase) AddLine(itemID id.ID, qty float64, unitPrice *types.Money) {
	p.Lines = append(p.Lines, Line{
		LineID:    id.New(),
		LineNo:    len(p.Lines) + 1,
		ItemID:    itemID,
		Qty:       qty,
		UnitPrice: unitPrice,
	})
	p.RecalculateTotals()
}

// RecalculateTotals derives line amounts from prices and sums the
// document total over priced lines.
func (p *Purchase) RecalculateTotals() {
	total := types.Zero()
	for i := range p.Lines {
		line := &p.Lines[i]
		if line.UnitPrice == nil {
			line.Amount = nil
			continue
		}
		amount := types.MulQty(*line.UnitPrice, line.Qty)
		line.Amount = &amount
		total = total.Add(amount)
	}
	p.TotalAmount = total
}

// Validate implements entity.Validatable.
func (p *Purchase) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if !entity.ValidLocation(p.Location) {
		return apperror.NewValidation("unknown location").
			WithDetail("field", "location").WithDetail("value", string(p.Location))
	}

	if len(p.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range p.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("item is required").
				WithDetail("field", "lines").WithLine(i + 1)
		}
		if line.Qty <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").WithLine(i + 1)
		}
		if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "lines").WithLine(i + 1)
		}
	}

	return nil
}

// GetRefType returns the ledger reference type.
func (p *Purchase) GetRefType() entity.RefType {
	return entity.RefPurchase
}

// GenerateEntries creates ledger entries for this document.
func (p *Purchase) GenerateEntries(ctx context.Context) ([]entity.LedgerEntry, error) {
	entries := make([]entity.LedgerEntry, 0, len(p.Lines))
	for _, line := range p.Lines {
		entries = append(entries, entity.NewLedgerEntry(
			entity.RefPurchase,
			p.ID,
			p.PostedVersion,
			p.Date,
			line.ItemID,
			p.Location,
			entity.MovementPurchase,
			line.Qty,
			p.Note,
		))
	}
	return entries, nil
}

// Ensure interface compliance at compile time.
var _ posting.Document = (*Purchase)(nil)
