// Package report_repo provides the PostgreSQL read-side for the
// reporting services.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"takoyaki/internal/core/types"
	"takoyaki/internal/domain/catalogs/item"
	"takoyaki/internal/domain/documents/stocktake"
	"takoyaki/internal/domain/reports"
	"takoyaki/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository with aggregate queries
// over documents and the stock ledger.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// MonthlyValuations returns the food valuation total of every posted
// monthly stocktake taken strictly before until, oldest first.
func (r *ReportRepo) MonthlyValuations(ctx context.Context, until time.Time) ([]reports.Valuation, error) {
	sql, args, err := r.builder.
		Select(
			"s.id AS stocktake_id",
			"s.date AS taken_at",
			"COALESCE(SUM(l.line_amount) FILTER (WHERE i.cost_group = 'FOOD'), 0) AS amount",
		).
		From("doc_stocktakes s").
		LeftJoin("doc_stocktake_lines l ON l.document_id = s.id").
		LeftJoin("cat_items i ON i.id = l.item_id").
		Where(squirrel.Eq{"s.posted": true}).
		Where(squirrel.Eq{"s.deletion_mark": false}).
		Where(squirrel.Eq{"s.scope": stocktake.ScopeMonthly}).
		Where(squirrel.Lt{"s.date": until}).
		GroupBy("s.id", "s.date").
		OrderBy("s.date").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var valuations []reports.Valuation
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &valuations, sql, args...); err != nil {
		return nil, fmt.Errorf("get monthly valuations: %w", err)
	}
	return valuations, nil
}

// FoodPurchaseCost totals posted purchase lines over food items with
// document date in [from, to). Unpriced lines are valued at the
// item's reference price; with no reference price either they count
// as zero and only inflate UnpricedLines.
func (r *ReportRepo) FoodPurchaseCost(ctx context.Context, from, to time.Time) (reports.PurchaseCost, error) {
	var cost reports.PurchaseCost

	sql, args, err := r.builder.
		Select(
			"COALESCE(SUM(l.line_amount) FILTER (WHERE l.unit_price IS NOT NULL), 0)",
			"COALESCE(SUM(l.qty * i.reference_price) FILTER (WHERE l.unit_price IS NULL AND i.reference_price IS NOT NULL), 0)",
			"COUNT(*) FILTER (WHERE l.unit_price IS NULL)",
			"COUNT(*) FILTER (WHERE l.unit_price IS NULL AND i.reference_price IS NOT NULL)",
		).
		From("doc_purchase_lines l").
		Join("doc_purchases p ON p.id = l.document_id").
		Join("cat_items i ON i.id = l.item_id").
		Where(squirrel.Eq{"p.posted": true}).
		Where(squirrel.Eq{"p.deletion_mark": false}).
		Where(squirrel.Eq{"i.cost_group": item.GroupFood}).
		Where(squirrel.GtOrEq{"p.date": from}).
		Where(squirrel.Lt{"p.date": to}).
		ToSql()
	if err != nil {
		return cost, fmt.Errorf("build query: %w", err)
	}

	var priced, estimated types.Money
	var unpricedLines, substitutedLines int64
	row := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&priced, &estimated, &unpricedLines, &substitutedLines); err != nil {
		return cost, fmt.Errorf("get food purchase cost: %w", err)
	}

	cost.Amount = priced.Add(estimated)
	cost.UsedReferencePrice = substitutedLines > 0
	cost.UnpricedLines = int(unpricedLines)
	return cost, nil
}

// SalesTotal sums posted daily report sales with report date in
// [from, to).
func (r *ReportRepo) SalesTotal(ctx context.Context, from, to time.Time) (types.Money, error) {
	sql, args, err := r.builder.
		Select("COALESCE(SUM(sales_amount), 0)").
		From("daily_reports").
		Where(squirrel.Eq{"posted": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.GtOrEq{"report_date": from}).
		Where(squirrel.Lt{"report_date": to}).
		ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var total types.Money
	row := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("get sales total: %w", err)
	}
	return total, nil
}

// StockBalances returns per-location ledger sums for every active
// item, including items with no movements yet.
func (r *ReportRepo) StockBalances(ctx context.Context) ([]reports.ItemBalance, error) {
	sql, args, err := r.builder.
		Select(
			"i.id AS item_id",
			"i.code",
			"i.name",
			"i.base_unit",
			"COALESCE(SUM(e.qty_delta) FILTER (WHERE e.location = 'STORE'), 0) AS qty_store",
			"COALESCE(SUM(e.qty_delta) FILTER (WHERE e.location = 'WAREHOUSE'), 0) AS qty_warehouse",
			"i.reorder_point",
		).
		From("cat_items i").
		LeftJoin("ledger_entries e ON e.item_id = i.id").
		Where(squirrel.Eq{"i.active": true}).
		Where(squirrel.Eq{"i.deletion_mark": false}).
		GroupBy("i.id", "i.code", "i.name", "i.base_unit", "i.reorder_point").
		OrderBy("i.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []reports.ItemBalance
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("get stock balances: %w", err)
	}
	return balances, nil
}
