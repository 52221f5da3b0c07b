package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/domain"
	"takoyaki/internal/domain/documents/dailyreport"
	"takoyaki/internal/infrastructure/http/v1/dto"
)

// DailyReportHandler handles HTTP requests for daily reports.
type DailyReportHandler struct {
	*BaseDocumentHandler[*dailyreport.DailyReport, dto.CreateDailyReportRequest, dto.UpdateDailyReportRequest]
	service *dailyreport.Service
}

// NewDailyReportHandler creates a new daily report handler.
func NewDailyReportHandler(base *BaseHandler, service *dailyreport.Service) *DailyReportHandler {
	cfg := BaseDocumentHandlerConfig[*dailyreport.DailyReport, dto.CreateDailyReportRequest, dto.UpdateDailyReportRequest]{
		Service:    service,
		EntityName: "daily report",
		MapCreateDTO: func(req dto.CreateDailyReportRequest) (*dailyreport.DailyReport, error) {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateDailyReportRequest, existing *dailyreport.DailyReport) error {
			return req.ApplyTo(existing)
		},
		IsPostImmediately: func(req dto.CreateDailyReportRequest) bool {
			return req.PostImmediately
		},
	}

	return &DailyReportHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// GetByDate handles GET /document/daily-reports/by-date/:date
func (h *DailyReportHandler) GetByDate(c *gin.Context) {
	day, err := parseDateParam(c.Param("date"))
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByDate(c.Request.Context(), day)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// List handles GET /document/daily-reports
func (h *DailyReportHandler) List(c *gin.Context) {
	filter := dailyreport.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.Query("orderBy")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if v := c.Query("posted"); v != "" {
		posted := v == "true"
		filter.Posted = &posted
	}

	var err error
	if filter.DateFrom, err = h.ParseDateQuery(c, "dateFrom"); err != nil {
		h.Error(c, err)
		return
	}
	if filter.DateTo, err = h.ParseDateQuery(c, "dateTo"); err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RegisterRoutes wires daily report routes.
func (h *DailyReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/by-date/:date", h.GetByDate)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/post", h.Post)
	rg.POST("/:id/unpost", h.Unpost)
}

func parseDateParam(val string) (t time.Time, err error) {
	t, err = time.Parse("2006-01-02", val)
	if err != nil {
		return t, apperror.NewValidation("invalid date, expected YYYY-MM-DD").
			WithDetail("date", val)
	}
	return t, nil
}
