package handlers

import (
	"github.com/gin-gonic/gin"

	"takoyaki/internal/domain/catalogs/item"
	"takoyaki/internal/infrastructure/http/v1/dto"
)

// ItemHandler handles HTTP requests for stock items.
type ItemHandler struct {
	*BaseCatalogHandler[*item.Item, dto.CreateItemRequest, dto.UpdateItemRequest]
	service *item.Service
}

// NewItemHandler creates a new item handler.
func NewItemHandler(base *BaseHandler, service *item.Service) *ItemHandler {
	cfg := BaseCatalogHandlerConfig[*item.Item, dto.CreateItemRequest, dto.UpdateItemRequest]{
		Service:    service,
		EntityName: "item",
		MapCreateDTO: func(req dto.CreateItemRequest) (*item.Item, error) {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateItemRequest, existing *item.Item) error {
			return req.ApplyTo(existing)
		},
	}

	return &ItemHandler{
		BaseCatalogHandler: NewBaseCatalogHandler(base, cfg),
		service:            service,
	}
}

// ListActive handles GET /catalog/items/active
func (h *ItemHandler) ListActive(c *gin.Context) {
	items, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// RegisterRoutes wires item routes.
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/active", h.ListActive)
	h.BaseCatalogHandler.RegisterRoutes(rg)
}
