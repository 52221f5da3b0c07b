package stocktake

import (
	"context"
	"time"

	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/domain"
)

// Repository defines operations for stocktake documents.
type Repository interface {
	Create(ctx context.Context, doc *Stocktake) error
	GetByID(ctx context.Context, docID id.ID) (*Stocktake, error)
	GetByNumber(ctx context.Context, number string) (*Stocktake, error)
	Update(ctx context.Context, doc *Stocktake) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Stocktake], error)
}

// ListFilter for filtering stocktakes.
type ListFilter struct {
	domain.ListFilter

	Scope    *Scope
	Location *entity.Location
	Posted   *bool
	DateFrom *time.Time
	DateTo   *time.Time
}
