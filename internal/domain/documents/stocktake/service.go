package stocktake

import (
	"context"
	"fmt"
	"time"

	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/core/tx"
	"takoyaki/internal/core/types"
	"takoyaki/internal/domain"
	"takoyaki/internal/domain/costing"
	"takoyaki/internal/domain/ledger"
	"takoyaki/internal/domain/posting"
	"takoyaki/internal/domain/reconcile"
	"takoyaki/pkg/logger"
	"takoyaki/pkg/numerator"
)

// Service provides business operations for stocktake documents.
//
// Stocktakes do not go through the generic posting engine: computing
// theoretical quantities must happen AFTER the document's previous
// adjustments are deleted, inside the same transaction, or a re-post
// would reconcile against its own stale corrections.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	costing   *costing.Service
	numerator *numerator.Service
	txManager tx.Manager
	audit     posting.AuditSink // optional
}

// NewService creates a new stocktake service. audit may be nil.
func NewService(
	repo Repository,
	ledgerSvc *ledger.Service,
	costingSvc *costing.Service,
	num *numerator.Service,
	txManager tx.Manager,
	audit posting.AuditSink,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		costing:   costingSvc,
		numerator: num,
		txManager: txManager,
		audit:     audit,
	}
}

func (s *Service) ensureNumber(ctx context.Context, doc *Stocktake) error {
	if doc.Number != "" {
		return nil
	}
	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("STK"), time.Now())
	if err != nil {
		return fmt.Errorf("generate number: %w", err)
	}
	doc.Number = number
	return nil
}

// Create creates a stocktake without posting it.
func (s *Service) Create(ctx context.Context, doc *Stocktake) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.ensureNumber(ctx, doc); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	})
}

// GetByID retrieves a stocktake with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Stocktake, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines
	return doc, nil
}

// Update updates an unposted stocktake.
func (s *Service) Update(ctx context.Context, doc *Stocktake) error {
	if err := doc.CanModify(); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	})
}

// Delete removes an unposted stocktake.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if err := doc.CanModify(); err != nil {
		return err
	}
	return s.repo.Delete(ctx, docID)
}

// Post reconciles the count against the ledger and writes ADJUST
// entries. Re-posting replaces the previous adjustments.
func (s *Service) Post(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	return s.post(ctx, doc, false)
}

// PostAndSave creates and posts a stocktake in one operation.
func (s *Service) PostAndSave(ctx context.Context, doc *Stocktake) error {
	if err := s.ensureNumber(ctx, doc); err != nil {
		return err
	}
	return s.post(ctx, doc, doc.Version == 1)
}

func (s *Service) post(ctx context.Context, doc *Stocktake, isNew bool) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		doc.MarkPosted()
		newVersion := doc.PostedVersion

		// Remove the previous posting first so theoretical quantities
		// reflect the world without this document.
		removed, err := s.ledger.DeleteByReference(txCtx, entity.RefStocktake, doc.ID, newVersion)
		if err != nil {
			return err
		}

		theoretical, err := s.ledger.QuantitiesOnHand(txCtx, ledger.At(doc.Location, doc.Date))
		if err != nil {
			return err
		}

		counted := make([]reconcile.CountedLine, len(doc.Lines))
		for i, line := range doc.Lines {
			counted[i] = reconcile.CountedLine{ItemID: line.ItemID, Qty: line.CountedQty}
		}
		adjustments := reconcile.Adjustments(counted, theoretical)

		if len(adjustments) > 0 {
			entries := make([]entity.LedgerEntry, len(adjustments))
			for i, adj := range adjustments {
				entries[i] = entity.NewLedgerEntry(
					entity.RefStocktake, doc.ID, newVersion, doc.Date,
					adj.ItemID, doc.Location, entity.MovementAdjust, adj.Delta, doc.Note,
				)
			}
			if err := s.ledger.Append(txCtx, entries); err != nil {
				return err
			}
		}

		if err := s.valueLines(txCtx, doc, theoretical); err != nil {
			return err
		}

		if isNew {
			if err := s.repo.Create(txCtx, doc); err != nil {
				return err
			}
		} else if err := s.repo.Update(txCtx, doc); err != nil {
			return err
		}
		if err := s.repo.SaveLines(txCtx, doc.ID, doc.Lines); err != nil {
			return err
		}

		if s.audit != nil {
			if err := s.audit.RecordPosting(txCtx, entity.RefStocktake, doc.ID, newVersion, nil); err != nil {
				logger.Warn(txCtx, "posting audit failed", "ref_id", doc.ID, "error", err)
			}
		}

		logger.Info(txCtx, "stocktake posted",
			"id", doc.ID,
			"scope", doc.Scope,
			"location", doc.Location,
			"adjustments", len(adjustments),
			"replaced", removed,
		)
		return nil
	})
}

// valueLines fills theoretical/delta figures and values each counted
// line at the weighted-average unit cost as of the count moment.
func (s *Service) valueLines(ctx context.Context, doc *Stocktake, theoretical map[id.ID]float64) error {
	for i := range doc.Lines {
		line := &doc.Lines[i]
		line.TheoreticalQty = theoretical[line.ItemID]
		line.DeltaQty = line.CountedQty - line.TheoreticalQty

		cost, err := s.costing.UnitCostAsOf(ctx, line.ItemID, doc.Date)
		if err != nil {
			return fmt.Errorf("value line %d: %w", i+1, err)
		}
		line.UnitCost = cost.UnitCost
		line.Amount = types.MulQty(cost.UnitCost, line.CountedQty)
		line.CostIsFallback = cost.IsFallback || cost.UsedReferencePrice
	}
	return nil
}

// Unpost removes the stocktake's adjustments.
func (s *Service) Unpost(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if !doc.Posted {
		return nil
	}

	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		doc.MarkUnposted()
		if _, err := s.ledger.DeleteByReference(txCtx, entity.RefStocktake, doc.ID, doc.PostedVersion+1); err != nil {
			return err
		}
		return s.repo.Update(txCtx, doc)
	})
}

// List retrieves stocktakes with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Stocktake], error) {
	return s.repo.List(ctx, filter)
}
