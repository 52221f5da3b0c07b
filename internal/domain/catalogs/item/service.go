package item

import (
	"context"
	"fmt"
	"time"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/id"
	"takoyaki/internal/core/tx"
	"takoyaki/internal/domain"
	"takoyaki/pkg/logger"
	"takoyaki/pkg/numerator"
)

// Service provides business logic for the Item catalog.
type Service struct {
	*domain.CatalogService[*Item]
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new Item service.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Item]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "item",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		txManager:      txManager,
	}

	base.Hooks().OnBeforeCreate(svc.ensureCode)
	return svc
}

func (s *Service) ensureCode(ctx context.Context, it *Item) error {
	if it.Code != "" {
		return nil
	}
	code, err := s.Numerator().GetNextNumber(ctx, numerator.Config{
		Prefix:      "ITM",
		PadWidth:    4,
		ResetPeriod: "never",
	}, time.Now())
	if err != nil {
		return fmt.Errorf("generate item code: %w", err)
	}
	it.Code = code
	return nil
}

// Delete removes an item. Items referenced by ledger entries or recipe
// rows cannot be removed; they are deactivated instead so history keeps
// resolving while the item disappears from pickers.
func (s *Service) Delete(ctx context.Context, itemID id.ID) error {
	if _, err := s.repo.GetByID(ctx, itemID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("item", itemID.String())
		}
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.HardDelete(ctx, itemID)
	})
	if err == nil {
		return nil
	}
	if !apperror.IsIntegrity(err) {
		return fmt.Errorf("delete item: %w", err)
	}

	logger.Info(ctx, "item has history, deactivating instead", "item_id", itemID)
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Deactivate(ctx, itemID)
	})
}

// ListActive returns active items ordered by reorder urgency.
func (s *Service) ListActive(ctx context.Context) ([]*Item, error) {
	return s.repo.ListActive(ctx)
}
