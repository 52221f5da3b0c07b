// Package main is the entry point for the takoyaki API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"takoyaki/internal/core/types"
	"takoyaki/internal/domain/auth"
	"takoyaki/internal/domain/catalogs/item"
	"takoyaki/internal/domain/catalogs/recipe"
	"takoyaki/internal/domain/catalogs/supplier"
	"takoyaki/internal/domain/costing"
	"takoyaki/internal/domain/documents/dailyreport"
	"takoyaki/internal/domain/documents/purchase"
	"takoyaki/internal/domain/documents/stocktake"
	"takoyaki/internal/domain/documents/transfer"
	"takoyaki/internal/domain/ledger"
	"takoyaki/internal/domain/posting"
	"takoyaki/internal/domain/reports"
	v1 "takoyaki/internal/infrastructure/http/v1"
	"takoyaki/internal/infrastructure/storage/postgres"
	"takoyaki/internal/infrastructure/storage/postgres/auth_repo"
	"takoyaki/internal/infrastructure/storage/postgres/catalog_repo"
	"takoyaki/internal/infrastructure/storage/postgres/costing_repo"
	"takoyaki/internal/infrastructure/storage/postgres/document_repo"
	"takoyaki/internal/infrastructure/storage/postgres/ledger_repo"
	"takoyaki/internal/infrastructure/storage/postgres/report_repo"
	"takoyaki/pkg/logger"
	"takoyaki/pkg/numerator"
)

const version = "0.1.0"

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting takoyaki server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Repositories ---
	itemRepo := catalog_repo.NewItemRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	batchConfigRepo := catalog_repo.NewBatchConfigRepo(txManager)

	purchaseRepo := document_repo.NewPurchaseRepo(txManager)
	transferRepo := document_repo.NewTransferRepo(txManager)
	stocktakeRepo := document_repo.NewStocktakeRepo(txManager)
	dailyReportRepo := document_repo.NewDailyReportRepo(txManager)

	ledgerRepo := ledger_repo.NewLedgerRepo(txManager)
	costingRepo := costing_repo.NewCostingRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)

	// --- Domain services ---
	numeratorService := numerator.New(pool)

	ledgerService := ledger.NewService(ledgerRepo)
	costingService := costing.NewService(costingRepo)
	postingEngine := posting.NewEngine(ledgerService, txManager, auditService)

	itemService := item.NewService(itemRepo, txManager, numeratorService)
	supplierService := supplier.NewService(supplierRepo, txManager, numeratorService)
	recipeService := recipe.NewService(batchConfigRepo, txManager, numeratorService)

	purchaseService := purchase.NewService(purchaseRepo, postingEngine, numeratorService, txManager)
	transferService := transfer.NewService(transferRepo, postingEngine, numeratorService, txManager)
	stocktakeService := stocktake.NewService(stocktakeRepo, ledgerService, costingService, numeratorService, txManager, auditService)
	dailyReportService := dailyreport.NewService(dailyReportRepo, ledgerService, recipeService, numeratorService, txManager, auditService)

	idealRatio := types.Zero()
	if v := os.Getenv("IDEAL_FOOD_COST_RATIO"); v != "" {
		idealRatio, err = types.NewMoneyFromString(v)
		if err != nil {
			log.Fatalw("invalid IDEAL_FOOD_COST_RATIO", "value", v, "error", err)
		}
	}
	reportService := reports.NewService(reportRepo, idealRatio)

	// --- Auth ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))
	authService := auth.NewService(userRepo, jwtService, auth.DefaultServiceConfig())

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:    pool,
		Logger:  log,
		Version: version,

		JWTValidator: jwtService,
		AuthService:  authService,

		ItemService:     itemService,
		SupplierService: supplierService,
		RecipeService:   recipeService,

		PurchaseService:    purchaseService,
		TransferService:    transferService,
		StocktakeService:   stocktakeService,
		DailyReportService: dailyReportService,

		LedgerService: ledgerService,
		ReportService: reportService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
