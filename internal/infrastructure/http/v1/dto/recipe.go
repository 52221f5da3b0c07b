package dto

import (
	"takoyaki/internal/core/id"
	"takoyaki/internal/domain/catalogs/recipe"
)

// CreateBatchConfigRequest creates a batch recipe configuration.
type CreateBatchConfigRequest struct {
	Code           string             `json:"code,omitempty"`
	Name           string             `json:"name" binding:"required"`
	PiecesPerBatch int                `json:"piecesPerBatch" binding:"required,gt=0"`
	Rows           []RecipeRowRequest `json:"rows,omitempty" binding:"dive"`
}

// RecipeRowRequest is one ingredient row of a batch config.
type RecipeRowRequest struct {
	ItemID      string  `json:"itemId" binding:"required"`
	QtyPerBatch float64 `json:"qtyPerBatch" binding:"required,gt=0"`
	AutoConsume bool    `json:"autoConsume"`
}

// ToEntity converts the request to a domain batch config.
func (r *CreateBatchConfigRequest) ToEntity() (*recipe.BatchConfig, error) {
	cfg := recipe.NewBatchConfig(r.Code, r.Name, r.PiecesPerBatch)
	rows, err := toRecipeRows(r.Rows)
	if err != nil {
		return nil, err
	}
	cfg.Rows = rows
	return cfg, nil
}

// UpdateBatchConfigRequest patches a batch config. A non-nil Rows
// replaces the whole row set.
type UpdateBatchConfigRequest struct {
	Name           *string            `json:"name,omitempty"`
	PiecesPerBatch *int               `json:"piecesPerBatch,omitempty"`
	Rows           []RecipeRowRequest `json:"rows,omitempty" binding:"dive"`
}

// ApplyTo applies the patch to an existing batch config.
func (r *UpdateBatchConfigRequest) ApplyTo(cfg *recipe.BatchConfig) error {
	if r.Name != nil {
		cfg.Name = *r.Name
	}
	if r.PiecesPerBatch != nil {
		cfg.PiecesPerBatch = *r.PiecesPerBatch
	}
	if r.Rows != nil {
		rows, err := toRecipeRows(r.Rows)
		if err != nil {
			return err
		}
		cfg.Rows = rows
	}
	return nil
}

func toRecipeRows(reqs []RecipeRowRequest) ([]recipe.Row, error) {
	rows := make([]recipe.Row, 0, len(reqs))
	for _, req := range reqs {
		itemID, err := id.Parse(req.ItemID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, recipe.Row{
			ItemID:      itemID,
			QtyPerBatch: req.QtyPerBatch,
			AutoConsume: req.AutoConsume,
		})
	}
	return rows, nil
}
