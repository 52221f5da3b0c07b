// Package recipe provides the batch configuration catalog: how many
// pieces one production batch yields and which ingredients it consumes.
package recipe

import (
	"context"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
)

// BatchConfig describes one production setup. Exactly one config is
// active at a time; daily reports resolve ingredient usage through it.
type BatchConfig struct {
	entity.Catalog

	// PiecesPerBatch is how many sellable pieces one batch yields
	PiecesPerBatch int `db:"pieces_per_batch" json:"piecesPerBatch"`

	// Active marks the config used by daily report posting
	Active bool `db:"active" json:"active"`

	// Rows are loaded separately; not a DB column
	Rows []Row `db:"-" json:"rows,omitempty"`
}

// Row is one ingredient line of a batch config.
type Row struct {
	ID            id.ID `db:"id" json:"id"`
	BatchConfigID id.ID `db:"batch_config_id" json:"batchConfigId"`
	ItemID        id.ID `db:"item_id" json:"itemId"`

	// QtyPerBatch in the item's base unit, per produced batch
	QtyPerBatch float64 `db:"qty_per_batch" json:"qtyPerBatch"`

	// AutoConsume rows are derived from sales figures; others are
	// counted by hand at stocktake only
	AutoConsume bool `db:"auto_consume" json:"autoConsume"`
}

// NewBatchConfig creates an inactive BatchConfig.
func NewBatchConfig(code, name string, piecesPerBatch int) *BatchConfig {
	return &BatchConfig{
		Catalog:        entity.NewCatalog(code, name),
		PiecesPerBatch: piecesPerBatch,
	}
}

// Validate implements entity.Validatable.
func (c *BatchConfig) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}
	if c.PiecesPerBatch <= 0 {
		return apperror.NewValidation("pieces per batch must be positive").
			WithDetail("field", "piecesPerBatch")
	}
	for i, row := range c.Rows {
		if id.IsNil(row.ItemID) {
			return apperror.NewValidation("recipe row requires an item").WithLine(i)
		}
		if row.QtyPerBatch <= 0 {
			return apperror.NewValidation("quantity per batch must be positive").WithLine(i)
		}
	}
	return nil
}
