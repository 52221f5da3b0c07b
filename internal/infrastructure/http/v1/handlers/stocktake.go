package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"takoyaki/internal/core/entity"
	"takoyaki/internal/domain"
	"takoyaki/internal/domain/documents/stocktake"
	"takoyaki/internal/infrastructure/http/v1/dto"
)

// StocktakeHandler handles HTTP requests for stocktake documents.
type StocktakeHandler struct {
	*BaseDocumentHandler[*stocktake.Stocktake, dto.CreateStocktakeRequest, dto.UpdateStocktakeRequest]
	service *stocktake.Service
}

// NewStocktakeHandler creates a new stocktake handler.
func NewStocktakeHandler(base *BaseHandler, service *stocktake.Service) *StocktakeHandler {
	cfg := BaseDocumentHandlerConfig[*stocktake.Stocktake, dto.CreateStocktakeRequest, dto.UpdateStocktakeRequest]{
		Service:    service,
		EntityName: "stocktake",
		MapCreateDTO: func(req dto.CreateStocktakeRequest) (*stocktake.Stocktake, error) {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateStocktakeRequest, existing *stocktake.Stocktake) error {
			return req.ApplyTo(existing)
		},
		IsPostImmediately: func(req dto.CreateStocktakeRequest) bool {
			return req.PostImmediately
		},
	}

	return &StocktakeHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// List handles GET /document/stocktakes
func (h *StocktakeHandler) List(c *gin.Context) {
	filter := stocktake.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.Query("orderBy")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if v := c.Query("scope"); v != "" {
		scope := stocktake.Scope(v)
		filter.Scope = &scope
	}
	if v := c.Query("location"); v != "" {
		loc := entity.Location(v)
		filter.Location = &loc
	}
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

// RegisterRoutes wires stocktake routes.
func (h *StocktakeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/post", h.Post)
	rg.POST("/:id/unpost", h.Unpost)
}
