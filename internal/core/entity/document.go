package entity

import (
	"context"
	"time"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/id"
)

// Document is the base type for business transactions: purchases,
// transfers, stocktakes, daily reports.
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique within type)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Posted indicates the document's ledger entries are recorded
	Posted bool `db:"posted" json:"posted"`

	// PostedVersion tracks posting iterations. Ledger entries carry the
	// version they were written under, so a re-post can remove stale
	// entries with a single range delete.
	PostedVersion int `db:"posted_version" json:"postedVersion"`

	// Note is an optional user note
	Note string `db:"note" json:"note,omitempty"`
}

// NewDocument creates a Document dated now.
func NewDocument() Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC().Truncate(time.Second),
	}
}

// Validate implements Validatable.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

// MarkPosted sets the posted flag and increments the posting version.
func (d *Document) MarkPosted() {
	d.Posted = true
	d.PostedVersion++
	d.Touch()
}

// CanModify reports whether the document may be edited or deleted.
// Posted documents must be unposted first.
func (d *Document) CanModify() error {
	if d.Posted {
		return apperror.NewBusinessRule(apperror.CodeDocumentPosted,
			"posted document cannot be modified, unpost it first").
			WithDetail("id", d.ID)
	}
	return nil
}

// MarkUnposted clears the posted flag.
func (d *Document) MarkUnposted() {
	d.Posted = false
	d.Touch()
}

// --- Postable default implementations ---
// Document-specific types implement GetDocumentType, GetRefType and
// GenerateEntries; the rest comes from here.

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}

// GetPostedVersion returns the current posting version.
func (d *Document) GetPostedVersion() int {
	return d.PostedVersion
}

// IsPosted reports whether the document is currently posted.
func (d *Document) IsPosted() bool {
	return d.Posted
}

// CanPost validates whether the document can be posted.
// Override in document types needing additional checks.
func (d *Document) CanPost(ctx context.Context) error {
	return d.Validate(ctx)
}
