// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"takoyaki/internal/core/id"
	"takoyaki/internal/domain/auth"
	"takoyaki/internal/infrastructure/storage/postgres"
	"takoyaki/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@takoyaki.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE LOWER(email) = LOWER($1)`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now()

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, display_name, role, is_active,
			failed_login_attempts, created_at, updated_at
		)
		VALUES ($1, $2, $3, 'Shop Admin', $4, true, 0, $5, $5)
	`, userID, adminEmail, string(passwordHash), string(auth.RoleAdmin), now)
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", userID)
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	// 1. Supplier
	supplierID := id.New()
	supplierCode := "SUP-001"
	tag, err := pool.Pool.Exec(ctx, `
		INSERT INTO cat_suppliers (id, code, name, contact_name, phone, note)
		VALUES ($1, $2, $3, $4, $5, '')
		ON CONFLICT (code) WHERE NOT deletion_mark DO NOTHING
	`, supplierID, supplierCode, "Osaka Wholesale Foods", "Tanaka", "06-1234-5678")
	if err != nil {
		return fmt.Errorf("seed supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = pool.Pool.QueryRow(ctx,
			`SELECT id FROM cat_suppliers WHERE code = $1 AND NOT deletion_mark`,
			supplierCode,
		).Scan(&supplierID)
		if err != nil {
			return fmt.Errorf("fetch existing supplier: %w", err)
		}
	}

	// 2. Items
	type itemSeed struct {
		code         string
		name         string
		baseUnit     string
		costGroup    string
		reorderPoint float64
		refPrice     string // empty means NULL
		isFixed      bool
	}

	items := []itemSeed{
		{"ITM-OCTOPUS", "Boiled octopus", "kg", "FOOD", 2.0, "2400", false},
		{"ITM-FLOUR", "Takoyaki flour mix", "kg", "FOOD", 5.0, "320", false},
		{"ITM-EGG", "Eggs", "pc", "FOOD", 30, "25", false},
		{"ITM-DASHI", "Dashi stock powder", "kg", "FOOD", 0.5, "1800", false},
		{"ITM-SAUCE", "Takoyaki sauce", "l", "FOOD", 2.0, "650", false},
		{"ITM-MAYO", "Mayonnaise", "l", "FOOD", 1.0, "480", false},
		{"ITM-KATSUO", "Bonito flakes", "kg", "FOOD", 0.3, "4200", false},
		{"ITM-AONORI", "Aonori seaweed", "kg", "FOOD", 0.2, "5600", false},
		{"ITM-OIL", "Frying oil", "l", "FOOD", 3.0, "380", false},
		{"ITM-BOAT", "Paper boats", "pc", "SUPPLIES", 200, "8", false},
		{"ITM-PICK", "Bamboo picks", "pc", "SUPPLIES", 400, "1", false},
		{"ITM-GAS", "Propane canister", "pc", "SUPPLIES", 2, "1500", true},
	}

	itemIDs := make(map[string]id.ID)
	for _, it := range items {
		itemID := id.New()
		var refPrice any
		if it.refPrice != "" {
			refPrice = it.refPrice
		}
		tag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_items (
				id, code, name, supplier_id, base_unit, cost_group,
				reorder_point, reference_price, is_fixed, active
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true)
			ON CONFLICT (code) WHERE NOT deletion_mark DO NOTHING
		`, itemID, it.code, it.name, supplierID, it.baseUnit, it.costGroup,
			it.reorderPoint, refPrice, it.isFixed)
		if err != nil {
			return fmt.Errorf("seed item %s: %w", it.code, err)
		}
		if tag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx,
				`SELECT id FROM cat_items WHERE code = $1 AND NOT deletion_mark`,
				it.code,
			).Scan(&itemID)
			if err != nil {
				return fmt.Errorf("fetch existing item %s: %w", it.code, err)
			}
		}
		itemIDs[it.code] = itemID
	}
	log.Infow("items seeded", "count", len(items))

	// 3. Batch config with recipe rows
	configID := id.New()
	configCode := "BC-STANDARD"
	tag, err = pool.Pool.Exec(ctx, `
		INSERT INTO cat_batch_configs (id, code, name, pieces_per_batch, active)
		VALUES ($1, $2, $3, $4, true)
		ON CONFLICT (code) WHERE NOT deletion_mark DO NOTHING
	`, configID, configCode, "Standard 48-piece batch", 48)
	if err != nil {
		return fmt.Errorf("seed batch config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Infow("batch config already exists", "code", configCode)
		return nil
	}

	type rowSeed struct {
		itemCode    string
		qtyPerBatch float64
		autoConsume bool
	}

	rows := []rowSeed{
		{"ITM-OCTOPUS", 0.45, true},
		{"ITM-FLOUR", 0.5, true},
		{"ITM-EGG", 4, true},
		{"ITM-DASHI", 0.03, true},
		{"ITM-SAUCE", 0.15, true},
		{"ITM-MAYO", 0.08, true},
		{"ITM-KATSUO", 0.02, true},
		{"ITM-AONORI", 0.01, true},
		{"ITM-OIL", 0.1, true},
		{"ITM-BOAT", 6, false},
		{"ITM-PICK", 12, false},
	}

	for _, r := range rows {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_recipe_rows (id, batch_config_id, item_id, qty_per_batch, auto_consume)
			VALUES ($1, $2, $3, $4, $5)
		`, id.New(), configID, itemIDs[r.itemCode], r.qtyPerBatch, r.autoConsume)
		if err != nil {
			return fmt.Errorf("seed recipe row %s: %w", r.itemCode, err)
		}
	}
	log.Infow("batch config seeded", "code", configCode, "rows", len(rows))

	return nil
}
