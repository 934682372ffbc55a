package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiwari-pos/storefront/internal/config"
	"github.com/kiwari-pos/storefront/internal/enum"
	"github.com/kiwari-pos/storefront/internal/logging"
	"github.com/kiwari-pos/storefront/internal/quantity"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// CLI flags
	email := flag.String("email", "", "Admin email address")
	password := flag.String("password", "", "Admin password")
	name := flag.String("name", "", "Admin full name")
	catalog := flag.Bool("catalog", true, "Also seed the demo grocery catalog")
	flag.Parse()

	// Fall back to environment variables, then defaults
	*email = firstNonEmpty(*email, os.Getenv("SEED_EMAIL"), "admin@kiwari.com")
	*name = firstNonEmpty(*name, os.Getenv("SEED_NAME"), "Admin Kiwari")
	*password = firstNonEmpty(*password, os.Getenv("SEED_PASSWORD"))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if *password == "" {
		*password = "password123"
		logger.Warn("using default admin password 'password123', change it immediately in production")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("unable to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("unable to ping database", zap.Error(err))
	}
	logger.Info("connected to database")

	// Seed in a transaction: the admin and the catalog land together or not at all
	tx, err := pool.Begin(ctx)
	if err != nil {
		logger.Fatal("failed to begin transaction", zap.Error(err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	adminID, err := seedAdmin(ctx, tx, logger, *email, *password, *name)
	if err != nil {
		logger.Fatal("failed to seed admin", zap.Error(err))
	}

	if *catalog {
		if err := seedCatalog(ctx, tx, logger); err != nil {
			logger.Fatal("failed to seed catalog", zap.Error(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Fatal("failed to commit", zap.Error(err))
	}
	logger.Info("seed completed", zap.String("admin_id", adminID.String()))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// seedAdmin creates the admin user if it doesn't exist.
func seedAdmin(ctx context.Context, tx pgx.Tx, logger *zap.Logger, email, password, name string) (uuid.UUID, error) {
	var existingID uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE lower(email) = lower($1) LIMIT 1`, email).Scan(&existingID)
	if err == nil {
		logger.Info("admin already exists, skipping", zap.String("email", email), zap.String("id", existingID.String()))
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("check user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	var newID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO users (name, email, hashed_password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, name, email, string(hashed), enum.UserRoleAdmin).Scan(&newID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert admin: %w", err)
	}

	logger.Info("created admin", zap.String("email", email), zap.String("id", newID.String()))
	return newID, nil
}

type seedProduct struct {
	name        string
	subcategory string
	unit        quantity.Unit
	price       string
}

type seedCategory struct {
	name          string
	subcategories []string
	products      []seedProduct
}

// demoCatalog prices are per kilogram for kg, per gram for g and per item for piece.
var demoCatalog = []seedCategory{
	{
		name:          "Sayur & Buah",
		subcategories: []string{"Sayur", "Buah"},
		products: []seedProduct{
			{"Bayam", "Sayur", quantity.UnitKilogram, "18000"},
			{"Wortel", "Sayur", quantity.UnitKilogram, "16000"},
			{"Cabai Rawit", "Sayur", quantity.UnitGram, "60"},
			{"Pisang Cavendish", "Buah", quantity.UnitKilogram, "28000"},
			{"Alpukat", "Buah", quantity.UnitPiece, "9000"},
		},
	},
	{
		name:          "Sembako",
		subcategories: []string{"Beras", "Telur"},
		products: []seedProduct{
			{"Beras Pandan Wangi", "Beras", quantity.UnitKilogram, "15000"},
			{"Telur Ayam", "Telur", quantity.UnitPiece, "2500"},
			{"Gula Pasir", "", quantity.UnitKilogram, "17500"},
		},
	},
	{
		name:          "Daging & Ikan",
		subcategories: []string{"Daging", "Ikan"},
		products: []seedProduct{
			{"Dada Ayam", "Daging", quantity.UnitKilogram, "52000"},
			{"Daging Sapi", "Daging", quantity.UnitKilogram, "135000"},
			{"Ikan Kembung", "Ikan", quantity.UnitKilogram, "45000"},
		},
	},
}

// seedCatalog inserts the demo catalog. Categories that already exist by name
// are left alone, so reruns are idempotent.
func seedCatalog(ctx context.Context, tx pgx.Tx, logger *zap.Logger) error {
	for i, c := range demoCatalog {
		var existingID uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM categories WHERE name = $1 LIMIT 1`, c.name).Scan(&existingID)
		if err == nil {
			logger.Info("category already exists, skipping", zap.String("category", c.name))
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("check category %q: %w", c.name, err)
		}

		var categoryID uuid.UUID
		if err := tx.QueryRow(ctx,
			`INSERT INTO categories (name, sort_order) VALUES ($1, $2) RETURNING id`,
			c.name, i,
		).Scan(&categoryID); err != nil {
			return fmt.Errorf("insert category %q: %w", c.name, err)
		}

		subIDs := make(map[string]uuid.UUID, len(c.subcategories))
		for j, s := range c.subcategories {
			var id uuid.UUID
			if err := tx.QueryRow(ctx,
				`INSERT INTO subcategories (category_id, name, sort_order) VALUES ($1, $2, $3) RETURNING id`,
				categoryID, s, j,
			).Scan(&id); err != nil {
				return fmt.Errorf("insert subcategory %q: %w", s, err)
			}
			subIDs[s] = id
		}

		for _, p := range c.products {
			var sub *uuid.UUID
			if id, ok := subIDs[p.subcategory]; ok {
				sub = &id
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO products (category_id, subcategory_id, name, unit, price)
				VALUES ($1, $2, $3, $4, $5::numeric)
			`, categoryID, sub, p.name, string(p.unit), p.price); err != nil {
				return fmt.Errorf("insert product %q: %w", p.name, err)
			}
		}

		logger.Info("created category",
			zap.String("category", c.name),
			zap.Int("subcategories", len(c.subcategories)),
			zap.Int("products", len(c.products)))
	}
	return nil
}
