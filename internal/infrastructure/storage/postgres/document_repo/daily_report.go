package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/domain"
	"takoyaki/internal/domain/documents/dailyreport"
	"takoyaki/internal/infrastructure/storage/postgres"
)

const dailyReportsTable = "daily_reports"

// DailyReportRepo implements dailyreport.Repository.
type DailyReportRepo struct {
	*BaseDocumentRepo[*dailyreport.DailyReport]
}

// NewDailyReportRepo creates a new daily report repository.
func NewDailyReportRepo(txManager *postgres.TxManager) *DailyReportRepo {
	return &DailyReportRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			dailyReportsTable,
			postgres.ExtractDBColumns[dailyreport.DailyReport](),
			func() *dailyreport.DailyReport { return &dailyreport.DailyReport{} },
		),
	}
}

// GetByDate retrieves the report for one business day. Marked-deleted
// reports are invisible here so a replacement for the same day can be
// entered.
func (r *DailyReportRepo) GetByDate(ctx context.Context, reportDate time.Time) (*dailyreport.DailyReport, error) {
	day := reportDate.Truncate(24 * time.Hour)

	entity := &dailyreport.DailyReport{}
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"report_date": day}).
		Where(squirrel.Eq{"deletion_mark": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(dailyReportsTable, day.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("get by date: %w", err)
	}
	return entity, nil
}

// List retrieves daily reports with filtering.
func (r *DailyReportRepo) List(ctx context.Context, filter dailyreport.ListFilter) (domain.ListResult[*dailyreport.DailyReport], error) {
	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Posted != nil {
		q = q.Where(squirrel.Eq{"posted": *filter.Posted})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"report_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"report_date": *filter.DateTo})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	return r.listQuery(ctx, q, filter.ListFilter)
}
