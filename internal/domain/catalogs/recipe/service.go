package recipe

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

// Repository defines the interface for BatchConfig persistence.
type Repository interface {
	domain.CatalogRepository[*BatchConfig]

	// GetActive returns the active config without rows, or a not-found
	// error when nothing is active.
	GetActive(ctx context.Context) (*BatchConfig, error)

	// DeactivateAll clears the active flag on every config.
	DeactivateAll(ctx context.Context) error

	// SetActive sets the active flag on one config.
	SetActive(ctx context.Context, id id.ID) error

	// GetRows loads the ingredient rows of a config.
	GetRows(ctx context.Context, configID id.ID) ([]Row, error)

	// SaveRows replaces the ingredient rows of a config.
	SaveRows(ctx context.Context, configID id.ID, rows []Row) error
}

// Service provides business logic for batch configurations.
type Service struct {
	*domain.CatalogService[*BatchConfig]
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new BatchConfig service.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*BatchConfig]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "batch config",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		txManager:      txManager,
	}

	base.Hooks().OnBeforeCreate(svc.ensureCode)
	return svc
}

func (s *Service) ensureCode(ctx context.Context, cfg *BatchConfig) error {
	if cfg.Code != "" {
		return nil
	}
	code, err := s.Numerator().GetNextNumber(ctx, numerator.Config{
		Prefix:      "RCP",
		PadWidth:    3,
		ResetPeriod: "never",
	}, time.Now())
	if err != nil {
		return fmt.Errorf("generate batch config code: %w", err)
	}
	cfg.Code = code
	return nil
}

// GetActive returns the active config with its rows loaded.
func (s *Service) GetActive(ctx context.Context) (*BatchConfig, error) {
	cfg, err := s.repo.GetActive(ctx)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewBusinessRule(apperror.CodeNoActiveBatchConf,
				"no active batch configuration")
		}
		return nil, err
	}

	rows, err := s.repo.GetRows(ctx, cfg.ID)
	if err != nil {
		return nil, err
	}
	cfg.Rows = rows
	return cfg, nil
}

// Activate makes one config the active one. The previous active config
// is deactivated in the same transaction, so exactly one config is
// active at any moment.
func (s *Service) Activate(ctx context.Context, configID id.ID) error {
	if _, err := s.repo.GetByID(ctx, configID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("batch config", configID.String())
		}
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.DeactivateAll(ctx); err != nil {
			return err
		}
		return s.repo.SetActive(ctx, configID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "batch config activated", "config_id", configID)
	return nil
}

// SaveRows validates and replaces the ingredient rows of a config.
func (s *Service) SaveRows(ctx context.Context, configID id.ID, rows []Row) error {
	cfg, err := s.repo.GetByID(ctx, configID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("batch config", configID.String())
		}
		return err
	}

	cfg.Rows = rows
	if err := cfg.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SaveRows(ctx, configID, rows)
	})
}

// GetRows loads the ingredient rows of a config.
func (s *Service) GetRows(ctx context.Context, configID id.ID) ([]Row, error) {
	return s.repo.GetRows(ctx, configID)
}
