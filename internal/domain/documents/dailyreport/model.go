// Package dailyreport provides the DailyReport document: one record
// per business day holding sales and production figures. Posting
// derives ingredient CONSUME and WASTE ledger entries through the
// active batch configuration's recipe.
package dailyreport

import (
	"context"
	"time"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/types"
)

// DailyReport is the end-of-day closing record. Exactly one exists per
// calendar date.
type DailyReport struct {
	entity.Document

	// ReportDate is the business day (midnight, date identity)
	ReportDate time.Time `db:"report_date" json:"reportDate"`

	// SoldBatches is how many production batches were sold
	SoldBatches float64 `db:"sold_batches" json:"soldBatches"`

	// WastePieces is how many finished pieces were discarded
	WastePieces float64 `db:"waste_pieces" json:"wastePieces"`

	// ProductionMinutes is total production time
	ProductionMinutes int `db:"production_minutes" json:"productionMinutes"`

	// SalesAmount is the day's gross sales
	SalesAmount types.Money `db:"sales_amount" json:"salesAmount"`

	// Impression is the operator's free-text note about the day
	Impression string `db:"impression" json:"impression,omitempty"`
}

// New creates a DailyReport for the given business day.
func New(reportDate time.Time) *DailyReport {
	day := reportDate.Truncate(24 * time.Hour)
	doc := &DailyReport{
		Document:    entity.NewDocument(),
		ReportDate:  day,
		SalesAmount: types.Zero(),
	}
	doc.Date = day
	return doc
}

// Validate implements entity.Validatable.
func (d *DailyReport) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}

	if d.ReportDate.IsZero() {
		return apperror.NewValidation("report date is required").
			WithDetail("field", "reportDate")
	}
	if d.SoldBatches < 0 {
		return apperror.NewValidation("sold batches cannot be negative").
			WithDetail("field", "soldBatches")
	}
	if d.WastePieces < 0 {
		return apperror.NewValidation("waste pieces cannot be negative").
			WithDetail("field", "wastePieces")
	}
	if d.ProductionMinutes < 0 {
		return apperror.NewValidation("production minutes cannot be negative").
			WithDetail("field", "productionMinutes")
	}
	if d.SalesAmount.IsNegative() {
		return apperror.NewValidation("sales amount cannot be negative").
			WithDetail("field", "salesAmount")
	}

	return nil
}

// GetRefType returns the ledger reference type.
func (d *DailyReport) GetRefType() entity.RefType {
	return entity.RefDailyReport
}
