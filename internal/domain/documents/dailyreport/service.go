package dailyreport

import (
	"context"
	"fmt"
	"time"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/core/tx"
	"takoyaki/internal/domain"
	"takoyaki/internal/domain/catalogs/recipe"
	"takoyaki/internal/domain/ledger"
	"takoyaki/internal/domain/posting"
	"takoyaki/internal/domain/reconcile"
	"takoyaki/pkg/logger"
	"takoyaki/pkg/numerator"
)

// ConfigSource resolves the active batch configuration with rows.
type ConfigSource interface {
	GetActive(ctx context.Context) (*recipe.BatchConfig, error)
}

// Service provides business operations for daily reports.
//
// Like stocktakes, daily reports orchestrate their own posting
// transaction: entry generation depends on the active batch config
// read mid-transaction, and re-posting must delete the previous
// CONSUME/WASTE footprint first.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	configs   ConfigSource
	numerator *numerator.Service
	txManager tx.Manager
	audit     posting.AuditSink // optional
}

// NewService creates a new daily report service. audit may be nil.
func NewService(
	repo Repository,
	ledgerSvc *ledger.Service,
	configs ConfigSource,
	num *numerator.Service,
	txManager tx.Manager,
	audit posting.AuditSink,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		configs:   configs,
		numerator: num,
		txManager: txManager,
		audit:     audit,
	}
}

func (s *Service) ensureNumber(ctx context.Context, doc *DailyReport) error {
	if doc.Number != "" {
		return nil
	}
	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("DRP"), time.Now())
	if err != nil {
		return fmt.Errorf("generate number: %w", err)
	}
	doc.Number = number
	return nil
}

// checkUnique rejects a second report for the same date.
func (s *Service) checkUnique(ctx context.Context, doc *DailyReport) error {
	existing, err := s.repo.GetByDate(ctx, doc.ReportDate)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != doc.ID {
		return apperror.NewBusinessRule(apperror.CodeDuplicateReport,
			"a report for this date already exists").
			WithDetail("reportDate", doc.ReportDate.Format("2006-01-02")).
			WithDetail("existingId", existing.ID)
	}
	return nil
}

// GetByID retrieves a daily report.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*DailyReport, error) {
	return s.repo.GetByID(ctx, docID)
}

// GetByDate retrieves the report for one business day.
func (s *Service) GetByDate(ctx context.Context, reportDate time.Time) (*DailyReport, error) {
	return s.repo.GetByDate(ctx, reportDate.Truncate(24*time.Hour))
}

// Create saves a new report as a draft without posting.
func (s *Service) Create(ctx context.Context, doc *DailyReport) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkUnique(ctx, doc); err != nil {
		return err
	}
	if err := s.ensureNumber(ctx, doc); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, doc)
	})
}

// Update saves changes to a draft report.
func (s *Service) Update(ctx context.Context, doc *DailyReport) error {
	if err := doc.CanModify(); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkUnique(ctx, doc); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.Update(txCtx, doc)
	})
}

// Unpost removes the day's derived entries and clears the posted flag.
func (s *Service) Unpost(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if !doc.Posted {
		return nil
	}

	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		doc.MarkUnposted()
		if _, err := s.ledger.DeleteByReference(txCtx, entity.RefDailyReport, doc.ID, doc.PostedVersion+1); err != nil {
			return err
		}
		return s.repo.Update(txCtx, doc)
	})
}

// Delete unposts and removes a daily report.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.ledger.DeleteByReference(txCtx, entity.RefDailyReport, doc.ID, doc.PostedVersion+1); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, doc.ID)
	})
}

// Post derives and writes the day's CONSUME/WASTE entries. Re-posting
// (after an edit) replaces the previous footprint, so posting twice
// with identical figures yields identical ledger state.
func (s *Service) Post(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	return s.post(ctx, doc, false)
}

// PostAndSave creates (or updates) and posts in one operation.
func (s *Service) PostAndSave(ctx context.Context, doc *DailyReport) error {
	if err := s.ensureNumber(ctx, doc); err != nil {
		return err
	}
	return s.post(ctx, doc, doc.Version == 1)
}

func (s *Service) post(ctx context.Context, doc *DailyReport, isNew bool) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkUnique(ctx, doc); err != nil {
		return err
	}

	cfg, err := s.configs.GetActive(ctx)
	if err != nil {
		return err
	}

	rows := make([]reconcile.RecipeRow, len(cfg.Rows))
	for i, row := range cfg.Rows {
		rows[i] = reconcile.RecipeRow{
			ItemID:      row.ItemID,
			QtyPerBatch: row.QtyPerBatch,
			AutoConsume: row.AutoConsume,
		}
	}

	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		doc.MarkPosted()
		newVersion := doc.PostedVersion

		removed, err := s.ledger.DeleteByReference(txCtx, entity.RefDailyReport, doc.ID, newVersion)
		if err != nil {
			return err
		}

		usage := reconcile.ProductionUsage(rows, doc.SoldBatches, doc.WastePieces, cfg.PiecesPerBatch)

		var entries []entity.LedgerEntry
		for _, u := range usage {
			if u.ConsumeQty > 0 {
				entries = append(entries, entity.NewLedgerEntry(
					entity.RefDailyReport, doc.ID, newVersion, doc.ReportDate,
					u.ItemID, entity.LocationStore, entity.MovementConsume, -u.ConsumeQty, "",
				))
			}
			if u.WasteQty > 0 {
				entries = append(entries, entity.NewLedgerEntry(
					entity.RefDailyReport, doc.ID, newVersion, doc.ReportDate,
					u.ItemID, entity.LocationStore, entity.MovementWaste, -u.WasteQty, "",
				))
			}
		}

		if len(entries) > 0 {
			if err := s.ledger.Append(txCtx, entries); err != nil {
				return err
			}
		}

		if isNew {
			if err := s.repo.Create(txCtx, doc); err != nil {
				return err
			}
		} else if err := s.repo.Update(txCtx, doc); err != nil {
			return err
		}

		if s.audit != nil {
			if err := s.audit.RecordPosting(txCtx, entity.RefDailyReport, doc.ID, newVersion, entries); err != nil {
				logger.Warn(txCtx, "posting audit failed", "ref_id", doc.ID, "error", err)
			}
		}

		logger.Info(txCtx, "daily report posted",
			"id", doc.ID,
			"report_date", doc.ReportDate.Format("2006-01-02"),
			"entries", len(entries),
			"replaced", removed,
		)
		return nil
	})
}

// List retrieves daily reports with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*DailyReport], error) {
	return s.repo.List(ctx, filter)
}
