// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"takoyaki/internal/domain/auth"
	"takoyaki/internal/domain/catalogs/item"
	"takoyaki/internal/domain/catalogs/recipe"
	"takoyaki/internal/domain/catalogs/supplier"
	"takoyaki/internal/domain/documents/dailyreport"
	"takoyaki/internal/domain/documents/purchase"
	"takoyaki/internal/domain/documents/stocktake"
	"takoyaki/internal/domain/documents/transfer"
	"takoyaki/internal/domain/ledger"
	"takoyaki/internal/domain/reports"
	"takoyaki/internal/infrastructure/http/v1/handlers"
	"takoyaki/internal/infrastructure/http/v1/middleware"
	"takoyaki/internal/infrastructure/storage/postgres"
	"takoyaki/pkg/logger"
)

// RouterConfig holds the assembled services the router exposes.
type RouterConfig struct {
	Pool    *postgres.Pool
	Logger  *logger.Logger
	Version string

	JWTValidator middleware.JWTValidator
	AuthService  *auth.Service

	ItemService     *item.Service
	SupplierService *supplier.Service
	RecipeService   *recipe.Service

	PurchaseService    *purchase.Service
	TransferService    *transfer.Service
	StocktakeService   *stocktake.Service
	DailyReportService *dailyreport.Service

	LedgerService *ledger.Service
	ReportService *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints, no auth required
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	healthHandler.RegisterRoutes(router.Group("/health"))

	base := handlers.NewBaseHandler()

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		authHandler := handlers.NewAuthHandler(cfg.AuthService)
		authHandler.RegisterRoutes(v1, protected)

		catalog := protected.Group("/catalog")
		handlers.NewItemHandler(base, cfg.ItemService).RegisterRoutes(catalog.Group("/items"))
		handlers.NewSupplierHandler(base, cfg.SupplierService).RegisterRoutes(catalog.Group("/suppliers"))
		handlers.NewRecipeHandler(base, cfg.RecipeService).RegisterRoutes(catalog.Group("/batch-configs"))

		document := protected.Group("/document")
		handlers.NewPurchaseHandler(base, cfg.PurchaseService).RegisterRoutes(document.Group("/purchases"))
		handlers.NewTransferHandler(base, cfg.TransferService).RegisterRoutes(document.Group("/transfers"))
		handlers.NewStocktakeHandler(base, cfg.StocktakeService).RegisterRoutes(document.Group("/stocktakes"))
		handlers.NewDailyReportHandler(base, cfg.DailyReportService).RegisterRoutes(document.Group("/daily-reports"))

		handlers.NewLedgerHandler(base, cfg.LedgerService).RegisterRoutes(protected.Group("/ledger"))
		handlers.NewReportHandler(base, cfg.ReportService).RegisterRoutes(protected.Group("/reports"))
	}

	return router
}
