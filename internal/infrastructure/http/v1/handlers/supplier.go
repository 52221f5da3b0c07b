package handlers

import (
	"takoyaki/internal/domain/catalogs/supplier"
	"takoyaki/internal/infrastructure/http/v1/dto"
)

// SupplierHandler handles HTTP requests for suppliers.
type SupplierHandler struct {
	*BaseCatalogHandler[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]
}

// NewSupplierHandler creates a new supplier handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHandler {
	cfg := BaseCatalogHandlerConfig[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]{
		Service:    service,
		EntityName: "supplier",
		MapCreateDTO: func(req dto.CreateSupplierRequest) (*supplier.Supplier, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateSupplierRequest, existing *supplier.Supplier) error {
			req.ApplyTo(existing)
			return nil
		},
	}

	return &SupplierHandler{
		BaseCatalogHandler: NewBaseCatalogHandler(base, cfg),
	}
}
