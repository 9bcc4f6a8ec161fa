// Command seed-db provisions a demo dataset: a flower shop with products and
// variants, an admin account, and a couple of vouchers.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/floramart/internal/storage/postgres"
)

const (
	upsertUserSQL = `INSERT INTO users (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role`

	upsertShopSQL = `INSERT INTO shops (id, owner_id, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`

	upsertProductSQL = `INSERT INTO products (id, shop_id, name, description, category)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name,
			description = EXCLUDED.description, category = EXCLUDED.category`

	upsertVariantSQL = `INSERT INTO variants (id, product_id, name, price, stock)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name,
			price = EXCLUDED.price, stock = EXCLUDED.stock`

	upsertVoucherSQL = `INSERT INTO vouchers (id, code, discount_type, value, min_order_value,
		max_uses, starts_at, ends_at, status, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'active', $9)
		ON CONFLICT DO NOTHING`
)

// Deterministic IDs keep the seed idempotent across runs.
const (
	ownerID   = "0b6a2b1e-0000-4000-8000-000000000001"
	adminID   = "0b6a2b1e-0000-4000-8000-000000000002"
	shopID    = "1c7b3c2f-0000-4000-8000-000000000001"
	bouquetID = "2d8c4d30-0000-4000-8000-000000000001"
	basketID  = "2d8c4d30-0000-4000-8000-000000000002"
	orchidID  = "2d8c4d30-0000-4000-8000-000000000003"
)

type variantSeed struct {
	id, name string
	price    int64
	stock    int
}

type productSeed struct {
	id, name, description, category string
	variants                        []variantSeed
}

var products = []productSeed{
	{
		id: bouquetID, name: "Rose Bouquet", category: "flowers",
		description: "Hand-tied bouquet of fresh roses",
		variants: []variantSeed{
			{id: "3e9d5e41-0000-4000-8000-000000000001", name: "12 stems", price: 250_000, stock: 40},
			{id: "3e9d5e41-0000-4000-8000-000000000002", name: "24 stems", price: 450_000, stock: 25},
		},
	},
	{
		id: basketID, name: "Gift Basket", category: "gifts",
		description: "Seasonal fruit and chocolate basket",
		variants: []variantSeed{
			{id: "3e9d5e41-0000-4000-8000-000000000003", name: "Standard", price: 350_000, stock: 30},
			{id: "3e9d5e41-0000-4000-8000-000000000004", name: "Deluxe", price: 600_000, stock: 15},
		},
	},
	{
		id: orchidID, name: "Potted Orchid", category: "plants",
		description: "White phalaenopsis orchid in ceramic pot",
		variants: []variantSeed{
			{id: "3e9d5e41-0000-4000-8000-000000000005", name: "Single stem", price: 320_000, stock: 20},
		},
	},
}

func main() {
	var (
		databaseURL   string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the seeded admin account (or FLORA_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("FLORA_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or FLORA_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedUsersAndShop(ctx, pool, adminPassword); err != nil {
		return errors.Wrap(err, "seed users and shop")
	}
	if err := seedCatalog(ctx, pool); err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	if err := seedVouchers(ctx, pool); err != nil {
		return errors.Wrap(err, "seed vouchers")
	}
	return nil
}

func seedUsersAndShop(ctx context.Context, pool *pgxpool.Pool, adminPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	if _, err := pool.Exec(ctx, upsertUserSQL,
		adminID, "admin@floramart.local", string(hash), "Admin", "admin"); err != nil {
		return errors.Wrap(err, "upsert admin")
	}
	if _, err := pool.Exec(ctx, upsertUserSQL,
		ownerID, "shop@floramart.local", string(hash), "Demo Florist", "shop_owner"); err != nil {
		return errors.Wrap(err, "upsert shop owner")
	}
	if _, err := pool.Exec(ctx, upsertShopSQL, shopID, ownerID, "Demo Florist"); err != nil {
		return errors.Wrap(err, "upsert shop")
	}

	slog.Info("seeded accounts", slog.String("admin", "admin@floramart.local"))
	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding catalog", slog.Int("products", len(products)))

	for _, p := range products {
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.id, shopID, p.name, p.description, p.category); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.name)
		}
		for _, v := range p.variants {
			if _, err := pool.Exec(ctx, upsertVariantSQL,
				v.id, p.id, v.name, decimal.NewFromInt(v.price), v.stock); err != nil {
				return errors.Wrapf(err, "upsert variant %s of %s", v.name, p.name)
			}
		}
		slog.Info("seeded product", slog.String("name", p.name), slog.Int("variants", len(p.variants)))
	}
	return nil
}

func seedVouchers(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding vouchers")

	now := time.Now().Truncate(24 * time.Hour)
	vouchers := []struct {
		id, code, discountType string
		value, minOrder        int64
		maxUses                int
		description            string
	}{
		{
			id: "4fae6f52-0000-4000-8000-000000000001", code: "WELCOME10",
			discountType: "percentage", value: 10, minOrder: 0, maxUses: 0,
			description: "10% off for new customers",
		},
		{
			id: "4fae6f52-0000-4000-8000-000000000002", code: "SAVE50K",
			discountType: "fixed", value: 50_000, minOrder: 300_000, maxUses: 100,
			description: "50.000₫ off orders from 300.000₫",
		},
	}

	for _, v := range vouchers {
		if _, err := pool.Exec(ctx, upsertVoucherSQL,
			v.id, v.code, v.discountType,
			decimal.NewFromInt(v.value), decimal.NewFromInt(v.minOrder),
			v.maxUses, now, now.AddDate(1, 0, 0), v.description); err != nil {
			return errors.Wrapf(err, "upsert voucher %s", v.code)
		}
		slog.Info("seeded voucher", slog.String("code", v.code))
	}
	return nil
}
