// Package supplier provides the Supplier catalog.
package supplier

import (
	"context"

	"takoyaki/internal/core/entity"
)

// Supplier is a vendor items are purchased from.
type Supplier struct {
	entity.Catalog

	// ContactName is the person to call for orders
	ContactName string `db:"contact_name" json:"contactName,omitempty"`

	// Phone for orders
	Phone string `db:"phone" json:"phone,omitempty"`

	// Note is free text (delivery days, minimum order, etc.)
	Note string `db:"note" json:"note,omitempty"`
}

// NewSupplier creates a Supplier with required fields.
func NewSupplier(code, name string) *Supplier {
	return &Supplier{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable.
func (s *Supplier) Validate(ctx context.Context) error {
	return s.Catalog.Validate(ctx)
}
