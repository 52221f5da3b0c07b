package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"takoyaki/internal/core/id"
	"takoyaki/internal/domain"
	"takoyaki/internal/domain/documents/stocktake"
	"takoyaki/internal/infrastructure/storage/postgres"
)

const (
	stocktakesTable     = "doc_stocktakes"
	stocktakeLinesTable = "doc_stocktake_lines"
)

// StocktakeRepo implements stocktake.Repository.
type StocktakeRepo struct {
	*BaseDocumentRepo[*stocktake.Stocktake]
}

// NewStocktakeRepo creates a new stocktake repository.
func NewStocktakeRepo(txManager *postgres.TxManager) *StocktakeRepo {
	return &StocktakeRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			stocktakesTable,
			postgres.ExtractDBColumns[stocktake.Stocktake](),
			func() *stocktake.Stocktake { return &stocktake.Stocktake{} },
		),
	}
}

// GetLines retrieves lines for a stocktake ordered by line number.
func (r *StocktakeRepo) GetLines(ctx context.Context, docID id.ID) ([]stocktake.Line, error) {
	sql, args, err := r.Builder().
		Select(
			"line_id", "line_no", "item_id",
			"counted_qty", "theoretical_qty", "delta_qty",
			"unit_cost", "line_amount", "cost_is_fallback",
		).
		From(stocktakeLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []stocktake.Line
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get stocktake lines: %w", err)
	}
	return lines, nil
}

// SaveLines replaces the full line set of a stocktake. Posting
// snapshots computed deltas and costs back onto the lines, so the
// set is rewritten wholesale.
func (r *StocktakeRepo) SaveLines(ctx context.Context, docID id.ID, lines []stocktake.Line) error {
	if err := r.deleteLines(ctx, stocktakeLinesTable, docID); err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(stocktakeLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "item_id",
			"counted_qty", "theoretical_qty", "delta_qty",
			"unit_cost", "line_amount", "cost_is_fallback",
		)
	for _, line := range lines {
		lineID := line.LineID
		if id.IsNil(lineID) {
			lineID = id.New()
		}
		q = q.Values(
			lineID, docID, line.LineNo, line.ItemID,
			line.CountedQty, line.TheoreticalQty, line.DeltaQty,
			line.UnitCost, line.Amount, line.CostIsFallback,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert stocktake lines: %w", postgres.MapConstraintError(err, stocktakeLinesTable, docID))
	}
	return nil
}

// List retrieves stocktakes with filtering.
func (r *StocktakeRepo) List(ctx context.Context, filter stocktake.ListFilter) (domain.ListResult[*stocktake.Stocktake], error) {
	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Scope != nil {
		q = q.Where(squirrel.Eq{"scope": *filter.Scope})
	}
	if filter.Location != nil {
		q = q.Where(squirrel.Eq{"location": *filter.Location})
	}
	if filter.Posted != nil {
		q = q.Where(squirrel.Eq{"posted": *filter.Posted})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	return r.listQuery(ctx, q, filter.ListFilter)
}
