package dto

import (
	"time"

	"takoyaki/internal/core/types"
	"takoyaki/internal/domain/documents/dailyreport"
)

// CreateDailyReportRequest creates a daily operations report.
type CreateDailyReportRequest struct {
	Number            string    `json:"number,omitempty"`
	ReportDate        time.Time `json:"reportDate" binding:"required"`
	SoldBatches       float64   `json:"soldBatches" binding:"gte=0"`
	WastePieces       float64   `json:"wastePieces" binding:"gte=0"`
	ProductionMinutes int       `json:"productionMinutes" binding:"gte=0"`
	SalesAmount       string    `json:"salesAmount,omitempty"`
	Impression        string    `json:"impression,omitempty"`
	Note              string    `json:"note,omitempty"`
	PostImmediately   bool      `json:"postImmediately,omitempty"`
}

// ToEntity converts the request to a domain daily report.
func (r *CreateDailyReportRequest) ToEntity() (*dailyreport.DailyReport, error) {
	doc := dailyreport.New(r.ReportDate)
	doc.Number = r.Number
	doc.SoldBatches = r.SoldBatches
	doc.WastePieces = r.WastePieces
	doc.ProductionMinutes = r.ProductionMinutes
	doc.Impression = r.Impression
	doc.Note = r.Note

	if r.SalesAmount != "" {
		amount, err := types.NewMoneyFromString(r.SalesAmount)
		if err != nil {
			return nil, err
		}
		doc.SalesAmount = amount
	}
	return doc, nil
}

// UpdateDailyReportRequest patches a daily report.
type UpdateDailyReportRequest struct {
	ReportDate        *time.Time `json:"reportDate,omitempty"`
	SoldBatches       *float64   `json:"soldBatches,omitempty"`
	WastePieces       *float64   `json:"wastePieces,omitempty"`
	ProductionMinutes *int       `json:"productionMinutes,omitempty"`
	SalesAmount       *string    `json:"salesAmount,omitempty"`
	Impression        *string    `json:"impression,omitempty"`
	Note              *string    `json:"note,omitempty"`
}

// ApplyTo applies the patch to an existing daily report.
func (r *UpdateDailyReportRequest) ApplyTo(doc *dailyreport.DailyReport) error {
	if r.ReportDate != nil {
		doc.ReportDate = r.ReportDate.Truncate(24 * time.Hour)
		doc.Date = doc.ReportDate
	}
	if r.SoldBatches != nil {
		doc.SoldBatches = *r.SoldBatches
	}
	if r.WastePieces != nil {
		doc.WastePieces = *r.WastePieces
	}
	if r.ProductionMinutes != nil {
		doc.ProductionMinutes = *r.ProductionMinutes
	}
	if r.SalesAmount != nil {
		amount, err := types.NewMoneyFromString(*r.SalesAmount)
		if err != nil {
			return err
		}
		doc.SalesAmount = amount
	}
	if r.Impression != nil {
		doc.Impression = *r.Impression
	}
	if r.Note != nil {
		doc.Note = *r.Note
	}
	return nil
}
