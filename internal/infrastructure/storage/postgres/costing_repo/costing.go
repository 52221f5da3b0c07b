// Package costing_repo provides the PostgreSQL read-side for the
// weighted-average costing engine.
package costing_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"takoyaki/internal/core/id"
	"takoyaki/internal/core/types"
	"takoyaki/internal/domain/costing"
	"takoyaki/internal/domain/documents/stocktake"
	"takoyaki/internal/infrastructure/storage/postgres"
)

// CostingRepo implements costing.Repository.
type CostingRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewCostingRepo creates a new costing repository.
func NewCostingRepo(txManager *postgres.TxManager) *CostingRepo {
	return &CostingRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// OpeningBalance returns the item's line in the latest posted monthly
// stocktake strictly before the given moment, or nil when the item
// has never been counted.
func (r *CostingRepo) OpeningBalance(ctx context.Context, itemID id.ID, before time.Time) (*costing.Opening, error) {
	sql, args, err := r.builder.
		Select("l.counted_qty", "l.unit_cost", "s.date").
		From("doc_stocktake_lines l").
		Join("doc_stocktakes s ON s.id = l.document_id").
		Where(squirrel.Eq{"l.item_id": itemID}).
		Where(squirrel.Eq{"s.posted": true}).
		Where(squirrel.Eq{"s.deletion_mark": false}).
		Where(squirrel.Eq{"s.scope": stocktake.ScopeMonthly}).
		Where(squirrel.Lt{"s.date": before}).
		OrderBy("s.date DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var opening costing.Opening
	row := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&opening.Qty, &opening.UnitCost, &opening.TakenAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get opening balance: %w", err)
	}
	return &opening, nil
}

// PurchaseActivity sums the item's posted purchase lines dated in
// [from, to). Priced and unpriced lines are tallied separately.
func (r *CostingRepo) PurchaseActivity(ctx context.Context, itemID id.ID, from, to time.Time) (costing.PurchaseTotals, error) {
	var totals costing.PurchaseTotals

	q := r.builder.
		Select(
			"COALESCE(SUM(l.qty) FILTER (WHERE l.unit_price IS NOT NULL), 0)",
			"COALESCE(SUM(l.line_amount) FILTER (WHERE l.unit_price IS NOT NULL), 0)",
			"COALESCE(SUM(l.qty) FILTER (WHERE l.unit_price IS NULL), 0)",
		).
		From("doc_purchase_lines l").
		Join("doc_purchases p ON p.id = l.document_id").
		Where(squirrel.Eq{"l.item_id": itemID}).
		Where(squirrel.Eq{"p.posted": true}).
		Where(squirrel.Eq{"p.deletion_mark": false}).
		Where(squirrel.Lt{"p.date": to})
	if !from.IsZero() {
		q = q.Where(squirrel.GtOrEq{"p.date": from})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return totals, fmt.Errorf("build query: %w", err)
	}

	row := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&totals.PricedQty, &totals.PricedAmount, &totals.UnpricedQty); err != nil {
		return totals, fmt.Errorf("get purchase activity: %w", err)
	}
	return totals, nil
}

// ReferencePrice returns the item's catalog reference price. The
// second return is false when no price is set.
func (r *CostingRepo) ReferencePrice(ctx context.Context, itemID id.ID) (types.Money, bool, error) {
	sql, args, err := r.builder.
		Select("reference_price").
		From("cat_items").
		Where(squirrel.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return types.Zero(), false, fmt.Errorf("build query: %w", err)
	}

	var price *types.Money
	row := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&price); err != nil {
		if err == pgx.ErrNoRows {
			return types.Zero(), false, nil
		}
		return types.Zero(), false, fmt.Errorf("get reference price: %w", err)
	}
	if price == nil {
		return types.Zero(), false, nil
	}
	return *price, true, nil
}
