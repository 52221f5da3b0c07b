package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"takoyaki/internal/core/id"
	"takoyaki/internal/domain"
	"takoyaki/internal/domain/documents/purchase"
	"takoyaki/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler handles HTTP requests for purchase documents.
type PurchaseHandler struct {
	*BaseDocumentHandler[*purchase.Purchase, dto.CreatePurchaseRequest, dto.UpdatePurchaseRequest]
	service *purchase.Service
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	cfg := BaseDocumentHandlerConfig[*purchase.Purchase, dto.CreatePurchaseRequest, dto.UpdatePurchaseRequest]{
		Service:    service,
		EntityName: "purchase",
		MapCreateDTO: func(req dto.CreatePurchaseRequest) (*purchase.Purchase, error) {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdatePurchaseRequest, existing *purchase.Purchase) error {
			return req.ApplyTo(existing)
		},
		IsPostImmediately: func(req dto.CreatePurchaseRequest) bool {
			return req.PostImmediately
		},
	}

	return &PurchaseHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// List handles GET /document/purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	filter := purchase.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.Query("orderBy")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if v := c.Query("supplierId"); v != "" {
		supplierID, err := id.Parse(v)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.SupplierID = &supplierID
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

// RegisterRoutes wires purchase routes.
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/post", h.Post)
	rg.POST("/:id/unpost", h.Unpost)
}
