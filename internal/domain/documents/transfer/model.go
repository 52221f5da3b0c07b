// Package transfer provides the Transfer document: stock moved between
// the warehouse and the store.
package transfer

import (
	"context"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/domain/posting"
)

// Transfer moves stock between locations. Posting writes a balanced
// pair of TRANSFER entries per line: negative at the source, positive
// at the destination.
type Transfer struct {
	entity.Document

	From entity.Location `db:"from_location" json:"from"`
	To   entity.Location `db:"to_location" json:"to"`

	// Lines is the table part
	Lines []Line `db:"-" json:"lines"`
}

// Line is one transferred position.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID   `db:"item_id" json:"itemId"`
	Qty    float64 `db:"qty" json:"qty"`
}

// New creates a Transfer document.
func New(from, to entity.Location) *Transfer {
	return &Transfer{
		Document: entity.NewDocument(),
		From:     from,
		To:       to,
		Lines:    make([]Line, 0),
	}
}

// AddLine appends a line.
func (t *Transfer) AddLine(itemID id.ID, qty float64) {
	t.Lines = append(t.Lines, Line{
		LineID: id.New(),
		LineNo: len(t.Lines) + 1,
		ItemID: itemID,
		Qty:    qty,
	})
}

// Validate implements entity.Validatable.
func (t *Transfer) Validate(ctx context.Context) error {
	if err := t.Document.Validate(ctx); err != nil {
		return err
	}

	if !entity.ValidLocation(t.From) {
		return apperror.NewValidation("unknown source location").
			WithDetail("field", "from").WithDetail("value", string(t.From))
	}
	if !entity.ValidLocation(t.To) {
		return apperror.NewValidation("unknown destination location").
			WithDetail("field", "to").WithDetail("value", string(t.To))
	}
	if t.From == t.To {
		return apperror.NewValidation("source and destination must differ").
			WithDetail("field", "to")
	}

	if len(t.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range t.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("item is required").
				WithDetail("field", "lines").WithLine(i + 1)
		}
		if line.Qty <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").WithLine(i + 1)
		}
	}

	return nil
}

// GetRefType returns the ledger reference type.
func (t *Transfer) GetRefType() entity.RefType {
	return entity.RefTransfer
}

// GenerateEntries creates the balanced entry pairs for this document.
func (t *Transfer) GenerateEntries(ctx context.Context) ([]entity.LedgerEntry, error) {
	entries := make([]entity.LedgerEntry, 0, len(t.Lines)*2)
	for _, line := range t.Lines {
		entries = append(entries,
			entity.NewLedgerEntry(
				entity.RefTransfer, t.ID, t.PostedVersion, t.Date,
				line.ItemID, t.From, entity.MovementTransfer, -line.Qty, t.Note,
			),
			entity.NewLedgerEntry(
				entity.RefTransfer, t.ID, t.PostedVersion, t.Date,
				line.ItemID, t.To, entity.MovementTransfer, line.Qty, t.Note,
			),
		)
	}
	return entries, nil
}

// Ensure interface compliance at compile time.
var _ posting.Document = (*Transfer)(nil)
