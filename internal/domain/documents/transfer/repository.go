package transfer

import (
	"context"
	"time"

	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/domain"
)

// Repository defines operations for transfer documents.
type Repository interface {
	Create(ctx context.Context, doc *Transfer) error
	GetByID(ctx context.Context, docID id.ID) (*Transfer, error)
	GetByNumber(ctx context.Context, number string) (*Transfer, error)
	Update(ctx context.Context, doc *Transfer) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Transfer], error)
}

// ListFilter for filtering transfers.
type ListFilter struct {
	domain.ListFilter

	From     *entity.Location
	To       *entity.Location
	Posted   *bool
	DateFrom *time.Time
	DateTo   *time.Time
}
