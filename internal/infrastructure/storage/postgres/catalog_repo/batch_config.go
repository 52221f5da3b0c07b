package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/id"
	"takoyaki/internal/domain/catalogs/recipe"
	"takoyaki/internal/infrastructure/storage/postgres"
)

const (
	batchConfigTable = "cat_batch_configs"
	recipeRowTable   = "cat_recipe_rows"
)

// BatchConfigRepo implements recipe.Repository.
type BatchConfigRepo struct {
	*BaseCatalogRepo[*recipe.BatchConfig]
}

// NewBatchConfigRepo creates a new batch config repository.
func NewBatchConfigRepo(txManager *postgres.TxManager) *BatchConfigRepo {
	return &BatchConfigRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			batchConfigTable,
			postgres.ExtractDBColumns[recipe.BatchConfig](),
			func() *recipe.BatchConfig { return &recipe.BatchConfig{} },
		),
	}
}

// GetActive returns the active config without rows.
func (r *BatchConfigRepo) GetActive(ctx context.Context) (*recipe.BatchConfig, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"active": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	cfg, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("batch config", "active")
		}
		return nil, err
	}
	return cfg, nil
}

// DeactivateAll clears the active flag on every config.
func (r *BatchConfigRepo) DeactivateAll(ctx context.Context) error {
	sql, args, err := r.Builder().
		Update(batchConfigTable).
		Set("active", false).
		Where(squirrel.Eq{"active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build deactivate all: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("deactivate configs: %w", err)
	}
	return nil
}

// SetActive sets the active flag on one config.
func (r *BatchConfigRepo) SetActive(ctx context.Context, configID id.ID) error {
	sql, args, err := r.Builder().
		Update(batchConfigTable).
		Set("active", true).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": configID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set active: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set active config: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("batch config", configID.String())
	}
	return nil
}

// GetRows loads the ingredient rows of a config.
func (r *BatchConfigRepo) GetRows(ctx context.Context, configID id.ID) ([]recipe.Row, error) {
	sql, args, err := r.Builder().
		Select(postgres.ExtractDBColumns[recipe.Row]()...).
		From(recipeRowTable).
		Where(squirrel.Eq{"batch_config_id": configID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []recipe.Row
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("get recipe rows: %w", err)
	}
	return rows, nil
}

// SaveRows replaces the ingredient rows of a config.
func (r *BatchConfigRepo) SaveRows(ctx context.Context, configID id.ID, rows []recipe.Row) error {
	delSQL, delArgs, err := r.Builder().
		Delete(recipeRowTable).
		Where(squirrel.Eq{"batch_config_id": configID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete rows: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("delete recipe rows: %w", err)
	}

	for _, row := range rows {
		if id.IsNil(row.ID) {
			row.ID = id.New()
		}
		row.BatchConfigID = configID

		insSQL, insArgs, err := r.Builder().
			Insert(recipeRowTable).
			SetMap(postgres.StructToMap(row)).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert row: %w", err)
		}
		if _, err := r.querier(ctx).Exec(ctx, insSQL, insArgs...); err != nil {
			return fmt.Errorf("insert recipe row: %w", postgres.MapConstraintError(err, "recipe row", row.ID))
		}
	}
	return nil
}
