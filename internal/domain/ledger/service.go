// Package ledger owns the append-only inventory transaction register.
// All stock state is derived by summing signed entry deltas; nothing
// in the system stores a running balance.
package ledger

import (
	"context"
	"math"
	"time"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
)

// Scope narrows quantity aggregation. Nil fields mean "all".
type Scope struct {
	Location *entity.Location
	AsOf     *time.Time // inclusive upper bound on happened_at
}

// AtLocation returns a scope restricted to one location.
func AtLocation(loc entity.Location) Scope {
	return Scope{Location: &loc}
}

// AsOf returns a scope with an upper time bound.
func AsOf(t time.Time) Scope {
	return Scope{AsOf: &t}
}

// At combines location and time bound.
func At(loc entity.Location, t time.Time) Scope {
	return Scope{Location: &loc, AsOf: &t}
}

// Repository is the persistence contract for ledger entries.
type Repository interface {
	Append(ctx context.Context, entries []entity.LedgerEntry) error
	DeleteByReference(ctx context.Context, refType entity.RefType, refID id.ID, beforeVersion int) (int64, error)
	EntriesByReference(ctx context.Context, refType entity.RefType, refID id.ID) ([]entity.LedgerEntry, error)
	SumQty(ctx context.Context, itemID id.ID, scope Scope) (float64, error)
	SumQtyByItem(ctx context.Context, scope Scope) (map[id.ID]float64, error)
	History(ctx context.Context, itemID id.ID, from, to time.Time) ([]entity.LedgerEntry, error)
}

// Service validates and records stock movements.
type Service struct {
	repo Repository
}

// NewService creates a ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Append validates and writes a batch of entries.
func (s *Service) Append(ctx context.Context, entries []entity.LedgerEntry) error {
	for i := range entries {
		if err := validateEntry(&entries[i]); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return appErr.WithLine(i)
			}
			return err
		}
	}
	return s.repo.Append(ctx, entries)
}

// DeleteByReference removes entries of a document written under a
// posting version lower than beforeVersion. Returns the removed count.
func (s *Service) DeleteByReference(ctx context.Context, refType entity.RefType, refID id.ID, beforeVersion int) (int64, error) {
	return s.repo.DeleteByReference(ctx, refType, refID, beforeVersion)
}

// EntriesByReference returns the current entries of one document.
func (s *Service) EntriesByReference(ctx context.Context, refType entity.RefType, refID id.ID) ([]entity.LedgerEntry, error) {
	return s.repo.EntriesByReference(ctx, refType, refID)
}

// QuantityOnHand returns the summed delta for one item within scope.
func (s *Service) QuantityOnHand(ctx context.Context, itemID id.ID, scope Scope) (float64, error) {
	return s.repo.SumQty(ctx, itemID, scope)
}

// QuantitiesOnHand returns summed deltas for every item with at least
// one entry within scope.
func (s *Service) QuantitiesOnHand(ctx context.Context, scope Scope) (map[id.ID]float64, error) {
	return s.repo.SumQtyByItem(ctx, scope)
}

// History returns an item's entries in [from, to) ordered by happened_at.
func (s *Service) History(ctx context.Context, itemID id.ID, from, to time.Time) ([]entity.LedgerEntry, error) {
	return s.repo.History(ctx, itemID, from, to)
}

func validateEntry(e *entity.LedgerEntry) error {
	if id.IsNil(e.ItemID) {
		return apperror.NewValidation("ledger entry requires an item")
	}
	if id.IsNil(e.RefID) || e.RefType == "" {
		return apperror.NewValidation("ledger entry requires a document reference")
	}
	if !entity.ValidLocation(e.Location) {
		return apperror.NewValidation("unknown location").WithDetail("location", string(e.Location))
	}
	switch e.Type {
	case entity.MovementPurchase, entity.MovementTransfer, entity.MovementAdjust,
		entity.MovementConsume, entity.MovementWaste:
	default:
		return apperror.NewValidation("unknown movement type").WithDetail("type", string(e.Type))
	}
	if math.IsNaN(e.QtyDelta) || math.IsInf(e.QtyDelta, 0) {
		return apperror.NewValidation("quantity delta must be finite")
	}
	if e.HappenedAt.IsZero() {
		return apperror.NewValidation("ledger entry requires a timestamp")
	}
	return nil
}
