package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"takoyaki/internal/core/entity"
	"takoyaki/internal/domain"
	"takoyaki/internal/domain/documents/transfer"
	"takoyaki/internal/infrastructure/http/v1/dto"
)

// TransferHandler handles HTTP requests for transfer documents.
type TransferHandler struct {
	*BaseDocumentHandler[*transfer.Transfer, dto.CreateTransferRequest, dto.UpdateTransferRequest]
	service *transfer.Service
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(base *BaseHandler, service *transfer.Service) *TransferHandler {
	cfg := BaseDocumentHandlerConfig[*transfer.Transfer, dto.CreateTransferRequest, dto.UpdateTransferRequest]{
		Service:    service,
		EntityName: "transfer",
		MapCreateDTO: func(req dto.CreateTransferRequest) (*transfer.Transfer, error) {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateTransferRequest, existing *transfer.Transfer) error {
			return req.ApplyTo(existing)
		},
		IsPostImmediately: func(req dto.CreateTransferRequest) bool {
			return req.PostImmediately
		},
	}

	return &TransferHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// List handles GET /document/transfers
func (h *TransferHandler) List(c *gin.Context) {
	filter := transfer.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.Query("orderBy")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if v := c.Query("from"); v != "" {
		loc := entity.Location(v)
		filter.From = &loc
	}
	if v := c.Query("to"); v != "" {
		loc := entity.Location(v)
		filter.To = &loc
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

// RegisterRoutes wires transfer routes.
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/post", h.Post)
	rg.POST("/:id/unpost", h.Unpost)
}
