package supplier

import (
	"context"
	"fmt"
	"time"

	"takoyaki/internal/core/id"
	"takoyaki/internal/core/tx"
	"takoyaki/internal/domain"
	"takoyaki/pkg/numerator"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	domain.CatalogRepository[*Supplier]
}

// Service provides business logic for the Supplier catalog.
type Service struct {
	*domain.CatalogService[*Supplier]
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new Supplier service.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "supplier",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		txManager:      txManager,
	}

	base.Hooks().OnBeforeCreate(svc.ensureCode)
	return svc
}

func (s *Service) ensureCode(ctx context.Context, sup *Supplier) error {
	if sup.Code != "" {
		return nil
	}
	code, err := s.Numerator().GetNextNumber(ctx, numerator.Config{
		Prefix:      "SUP",
		PadWidth:    3,
		ResetPeriod: "never",
	}, time.Now())
	if err != nil {
		return fmt.Errorf("generate supplier code: %w", err)
	}
	sup.Code = code
	return nil
}

// Delete removes a supplier. A supplier still referenced by items
// cannot be removed; the integrity error is surfaced so the operator
// reassigns the items first.
func (s *Service) Delete(ctx context.Context, supplierID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.HardDelete(ctx, supplierID)
	})
}
