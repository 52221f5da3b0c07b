package handlers

import (
	"github.com/gin-gonic/gin"

	"takoyaki/internal/domain/reports"
)

// ReportHandler exposes the reporting read models.
type ReportHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *BaseHandler, service *reports.Service) *ReportHandler {
	return &ReportHandler{BaseHandler: base, service: service}
}

// MonthlyFoodCost handles GET /reports/monthly-food-cost/:yearMonth
func (h *ReportHandler) MonthlyFoodCost(c *gin.Context) {
	statement, err := h.service.MonthlyFoodCost(c.Request.Context(), c.Param("yearMonth"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, statement)
}

// StockBalance handles GET /reports/stock-balance
func (h *ReportHandler) StockBalance(c *gin.Context) {
	lines, err := h.service.StockBalance(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, lines)
}

// ReorderAlerts handles GET /reports/reorder-alerts
func (h *ReportHandler) ReorderAlerts(c *gin.Context) {
	lines, err := h.service.ReorderAlerts(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, lines)
}

// RegisterRoutes wires report routes.
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/monthly-food-cost/:yearMonth", h.MonthlyFoodCost)
	rg.GET("/stock-balance", h.StockBalance)
	rg.GET("/reorder-alerts", h.ReorderAlerts)
}
