package dto

import (
	"takoyaki/internal/domain/catalogs/supplier"
)

// CreateSupplierRequest creates a supplier.
type CreateSupplierRequest struct {
	Code        string `json:"code,omitempty"`
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contactName,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Note        string `json:"note,omitempty"`
}

// ToEntity converts the request to a domain supplier.
func (r *CreateSupplierRequest) ToEntity() *supplier.Supplier {
	sup := supplier.NewSupplier(r.Code, r.Name)
	sup.ContactName = r.ContactName
	sup.Phone = r.Phone
	sup.Note = r.Note
	return sup
}

// UpdateSupplierRequest patches a supplier.
type UpdateSupplierRequest struct {
	Name        *string `json:"name,omitempty"`
	ContactName *string `json:"contactName,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Note        *string `json:"note,omitempty"`
}

// ApplyTo applies the patch to an existing supplier.
func (r *UpdateSupplierRequest) ApplyTo(sup *supplier.Supplier) {
	if r.Name != nil {
		sup.Name = *r.Name
	}
	if r.ContactName != nil {
		sup.ContactName = *r.ContactName
	}
	if r.Phone != nil {
		sup.Phone = *r.Phone
	}
	if r.Note != nil {
		sup.Note = *r.Note
	}
}
