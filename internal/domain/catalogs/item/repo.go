package item

import (
	"context"

	"takoyaki/internal/core/id"
	"takoyaki/internal/domain"
)

// Repository defines the interface for Item persistence.
type Repository interface {
	domain.CatalogRepository[*Item]

	// ListActive retrieves active items ordered by reorder urgency
	// (lowest stock headroom first).
	ListActive(ctx context.Context) ([]*Item, error)

	// Deactivate clears the active flag without touching history.
	Deactivate(ctx context.Context, id id.ID) error
}
