// Package ledger_repo provides the PostgreSQL implementation of the
// stock ledger repository.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/domain/ledger"
	"takoyaki/internal/infrastructure/storage/postgres"
)

const ledgerTable = "ledger_entries"

var ledgerColumns = []string{
	"line_id", "ref_type", "ref_id", "ref_version",
	"happened_at", "item_id", "location", "movement_type",
	"qty_delta", "note", "created_at",
}

// LedgerRepo implements ledger.Repository. Entries are append-only;
// the only mutation is the version-scoped delete used when a document
// is reposted or unposted.
type LedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append batch inserts entries.
func (r *LedgerRepo) Append(ctx context.Context, entries []entity.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction. Posting always is.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []any{
				e.LineID, e.RefType, e.RefID, e.RefVersion,
				e.HappenedAt, e.ItemID, e.Location, e.Type,
				e.QtyDelta, e.Note, e.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, ledgerTable, ledgerColumns, rows); err != nil {
			return fmt.Errorf("copy ledger entries: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(ledgerTable).Columns(ledgerColumns...)
	for _, e := range entries {
		q = q.Values(
			e.LineID, e.RefType, e.RefID, e.RefVersion,
			e.HappenedAt, e.ItemID, e.Location, e.Type,
			e.QtyDelta, e.Note, e.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert ledger entries: %w", err)
	}
	return nil
}

// DeleteByReference removes entries of a document written under a
// posting version lower than beforeVersion.
func (r *LedgerRepo) DeleteByReference(ctx context.Context, refType entity.RefType, refID id.ID, beforeVersion int) (int64, error) {
	sql, args, err := r.builder.Delete(ledgerTable).
		Where(squirrel.Eq{"ref_type": refType}).
		Where(squirrel.Eq{"ref_id": refID}).
		Where(squirrel.Lt{"ref_version": beforeVersion}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete ledger entries: %w", err)
	}
	return result.RowsAffected(), nil
}

// EntriesByReference retrieves the current entries of one document.
func (r *LedgerRepo) EntriesByReference(ctx context.Context, refType entity.RefType, refID id.ID) ([]entity.LedgerEntry, error) {
	sql, args, err := r.builder.Select(ledgerColumns...).
		From(ledgerTable).
		Where(squirrel.Eq{"ref_type": refType}).
		Where(squirrel.Eq{"ref_id": refID}).
		OrderBy("created_at", "line_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []entity.LedgerEntry
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("get entries by reference: %w", err)
	}
	return entries, nil
}

// SumQty returns the on-hand quantity of one item within the scope.
func (r *LedgerRepo) SumQty(ctx context.Context, itemID id.ID, scope ledger.Scope) (float64, error) {
	q := r.builder.
		Select("COALESCE(SUM(qty_delta), 0)").
		From(ledgerTable).
		Where(squirrel.Eq{"item_id": itemID})
	q = applyScope(q, scope)

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var sum float64
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum qty: %w", err)
	}
	return sum, nil
}

// SumQtyByItem returns on-hand quantities per item within the scope.
// Items with no movements are absent from the map.
func (r *LedgerRepo) SumQtyByItem(ctx context.Context, scope ledger.Scope) (map[id.ID]float64, error) {
	q := r.builder.
		Select("item_id", "SUM(qty_delta) AS qty").
		From(ledgerTable).
		GroupBy("item_id")
	q = applyScope(q, scope)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.txManager.GetQuerier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("sum qty by item: %w", err)
	}
	defer rows.Close()

	sums := make(map[id.ID]float64)
	for rows.Next() {
		var itemID id.ID
		var qty float64
		if err := rows.Scan(&itemID, &qty); err != nil {
			return nil, fmt.Errorf("scan qty row: %w", err)
		}
		sums[itemID] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read qty rows: %w", err)
	}
	return sums, nil
}

// History retrieves movements of one item within [from, to], oldest
// first.
func (r *LedgerRepo) History(ctx context.Context, itemID id.ID, from, to time.Time) ([]entity.LedgerEntry, error) {
	q := r.builder.Select(ledgerColumns...).
		From(ledgerTable).
		Where(squirrel.Eq{"item_id": itemID}).
		OrderBy("happened_at", "created_at")

	if !from.IsZero() {
		q = q.Where(squirrel.GtOrEq{"happened_at": from})
	}
	if !to.IsZero() {
		q = q.Where(squirrel.LtOrEq{"happened_at": to})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []entity.LedgerEntry
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return entries, nil
}

func applyScope(q squirrel.SelectBuilder, scope ledger.Scope) squirrel.SelectBuilder {
	if scope.Location != nil {
		q = q.Where(squirrel.Eq{"location": *scope.Location})
	}
	if scope.AsOf != nil {
		q = q.Where(squirrel.LtOrEq{"happened_at": *scope.AsOf})
	}
	return q
}
