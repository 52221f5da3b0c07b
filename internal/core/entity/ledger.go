package entity

import (
	"time"

	"takoyaki/internal/core/id"
)

// MovementType classifies a ledger entry.
type MovementType string

const (
	MovementPurchase MovementType = "PURCHASE"
	MovementTransfer MovementType = "TRANSFER"
	MovementAdjust   MovementType = "ADJUST"
	MovementConsume  MovementType = "CONSUME"
	MovementWaste    MovementType = "WASTE"
)

// Location identifies where stock physically sits.
type Location string

const (
	LocationStore     Location = "STORE"
	LocationWarehouse Location = "WAREHOUSE"
)

// ValidLocation reports whether l is a known location.
func ValidLocation(l Location) bool {
	return l == LocationStore || l == LocationWarehouse
}

// RefType identifies the document kind that produced a ledger entry.
type RefType string

const (
	RefPurchase    RefType = "PURCHASE"
	RefTransfer    RefType = "TRANSFER"
	RefStocktake   RefType = "STOCKTAKE"
	RefDailyReport RefType = "DAILY_REPORT"
)

// LedgerEntry is one immutable signed stock movement.
// Entries are never updated in place; corrections delete and re-insert
// the full set tied to the originating document.
type LedgerEntry struct {
	// LineID is the unique identifier of this entry (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// RefType/RefID reference the originating document
	RefType RefType `db:"ref_type" json:"refType"`
	RefID   id.ID   `db:"ref_id" json:"refId"`

	// RefVersion is the posting iteration that wrote this entry.
	// Cleanup on re-post: DELETE WHERE ref_id = X AND ref_version < Y.
	RefVersion int `db:"ref_version" json:"refVersion"`

	// HappenedAt is the business timestamp of the movement
	HappenedAt time.Time `db:"happened_at" json:"happenedAt"`

	// Dimensions
	ItemID   id.ID    `db:"item_id" json:"itemId"`
	Location Location `db:"location" json:"location"`

	// Type classifies the movement
	Type MovementType `db:"movement_type" json:"movementType"`

	// QtyDelta is the signed quantity change. The sum of deltas for an
	// item (optionally scoped by location and happened_at <= T) is the
	// quantity on hand at T.
	QtyDelta float64 `db:"qty_delta" json:"qtyDelta"`

	// Note is optional free text carried from the document
	Note string `db:"note" json:"note,omitempty"`

	// CreatedAt is when the entry was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewLedgerEntry creates a ledger entry with a generated LineID.
func NewLedgerEntry(
	refType RefType,
	refID id.ID,
	refVersion int,
	happenedAt time.Time,
	itemID id.ID,
	location Location,
	movementType MovementType,
	qtyDelta float64,
	note string,
) LedgerEntry {
	return LedgerEntry{
		LineID:     id.New(),
		RefType:    refType,
		RefID:      refID,
		RefVersion: refVersion,
		HappenedAt: happenedAt,
		ItemID:     itemID,
		Location:   location,
		Type:       movementType,
		QtyDelta:   qtyDelta,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	}
}
