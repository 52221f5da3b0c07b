package dailyreport

import (
	"context"
	"time"

	"takoyaki/internal/core/id"
	"takoyaki/internal/domain"
)

// Repository defines operations for daily report documents.
type Repository interface {
	Create(ctx context.Context, doc *DailyReport) error
	GetByID(ctx context.Context, docID id.ID) (*DailyReport, error)

	// GetByDate returns the report for one business day, or a
	// not-found error. Dates identify reports uniquely.
	GetByDate(ctx context.Context, reportDate time.Time) (*DailyReport, error)

	Update(ctx context.Context, doc *DailyReport) error
	Delete(ctx context.Context, docID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*DailyReport], error)
}

// ListFilter for filtering daily reports.
type ListFilter struct {
	domain.ListFilter

	DateFrom *time.Time
	DateTo   *time.Time
	Posted   *bool
}
