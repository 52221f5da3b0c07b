package handlers

import (
	"github.com/gin-gonic/gin"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/id"
	"takoyaki/internal/domain/catalogs/recipe"
	"takoyaki/internal/infrastructure/http/v1/dto"
)

// RecipeHandler handles HTTP requests for batch configurations.
type RecipeHandler struct {
	*BaseCatalogHandler[*recipe.BatchConfig, dto.CreateBatchConfigRequest, dto.UpdateBatchConfigRequest]
	service *recipe.Service
}

// NewRecipeHandler creates a new batch config handler.
func NewRecipeHandler(base *BaseHandler, service *recipe.Service) *RecipeHandler {
	cfg := BaseCatalogHandlerConfig[*recipe.BatchConfig, dto.CreateBatchConfigRequest, dto.UpdateBatchConfigRequest]{
		Service:    service,
		EntityName: "batch-config",
		MapCreateDTO: func(req dto.CreateBatchConfigRequest) (*recipe.BatchConfig, error) {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateBatchConfigRequest, existing *recipe.BatchConfig) error {
			return req.ApplyTo(existing)
		},
	}

	return &RecipeHandler{
		BaseCatalogHandler: NewBaseCatalogHandler(base, cfg),
		service:            service,
	}
}

// Create handles POST /catalog/batch-configs. Rows are saved together
// with the config.
func (h *RecipeHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateBatchConfigRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cfg, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid request").WithDetail("error", err.Error()))
		return
	}

	if err := h.service.Create(ctx, cfg); err != nil {
		h.Error(c, err)
		return
	}
	if len(cfg.Rows) > 0 {
		if err := h.service.SaveRows(ctx, cfg.ID, cfg.Rows); err != nil {
			h.Error(c, err)
			return
		}
	}
	c.JSON(201, cfg)
}

// GetActive handles GET /catalog/batch-configs/active
func (h *RecipeHandler) GetActive(c *gin.Context) {
	cfg, err := h.service.GetActive(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, cfg)
}

// Activate handles POST /catalog/batch-configs/:id/activate
func (h *RecipeHandler) Activate(c *gin.Context) {
	configID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Activate(c.Request.Context(), configID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "batch config activated")
}

// GetRows handles GET /catalog/batch-configs/:id/rows
func (h *RecipeHandler) GetRows(c *gin.Context) {
	configID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	rows, err := h.service.GetRows(c.Request.Context(), configID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}

// SaveRows handles PUT /catalog/batch-configs/:id/rows
func (h *RecipeHandler) SaveRows(c *gin.Context) {
	configID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var reqs []dto.RecipeRowRequest
	if !h.BindJSON(c, &reqs) {
		return
	}

	rows := make([]recipe.Row, 0, len(reqs))
	for _, req := range reqs {
		itemID, err := id.Parse(req.ItemID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid item id").WithDetail("itemId", req.ItemID))
			return
		}
		rows = append(rows, recipe.Row{
			ItemID:      itemID,
			QtyPerBatch: req.QtyPerBatch,
			AutoConsume: req.AutoConsume,
		})
	}

	if err := h.service.SaveRows(c.Request.Context(), configID, rows); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "rows saved")
}

// RegisterRoutes wires batch config routes.
func (h *RecipeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/active", h.GetActive)
	rg.GET("/by-code/:code", h.GetByCode)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/activate", h.Activate)
	rg.GET("/:id/rows", h.GetRows)
	rg.PUT("/:id/rows", h.SaveRows)
}
