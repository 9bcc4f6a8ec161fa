package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/floramart/internal/domain/catalog"
)

const (
	listProductsSQL = `SELECT id, shop_id, name, description, category
		FROM products ORDER BY name`

	getProductSQL = `SELECT id, shop_id, name, description, category
		FROM products WHERE id = $1`

	listAllVariantsSQL = `SELECT id, product_id, name, price, stock
		FROM variants ORDER BY product_id, name`

	listVariantsByProductSQL = `SELECT id, product_id, name, price, stock
		FROM variants WHERE product_id = $1 ORDER BY name`

	getVariantSQL = `SELECT id, product_id, name, price, stock
		FROM variants WHERE id = $1`

	getShopByOwnerSQL = `SELECT id, owner_id, name FROM shops WHERE owner_id = $1`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListProducts returns every product with its variants attached.
func (r *CatalogRepository) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	rows, err = r.pool.Query(ctx, listAllVariantsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing variants: %w", err)
	}
	variants, err := pgx.CollectRows(rows, scanVariant)
	if err != nil {
		return nil, fmt.Errorf("listing variants: %w", err)
	}

	byProduct := make(map[string][]catalog.Variant, len(products))
	for _, v := range variants {
		byProduct[v.ProductID] = append(byProduct[v.ProductID], v)
	}
	for i := range products {
		products[i].Variants = byProduct[products[i].ID]
	}
	return products, nil
}

// GetProduct returns catalog.ErrNotFound when no product matches.
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	rows, err = r.pool.Query(ctx, listVariantsByProductSQL, id)
	if err != nil {
		return nil, fmt.Errorf("listing variants of product %q: %w", id, err)
	}
	p.Variants, err = pgx.CollectRows(rows, scanVariant)
	if err != nil {
		return nil, fmt.Errorf("listing variants of product %q: %w", id, err)
	}
	return &p, nil
}

// GetVariant returns catalog.ErrVariantNotFound when no variant matches.
func (r *CatalogRepository) GetVariant(ctx context.Context, id string) (*catalog.Variant, error) {
	rows, err := r.pool.Query(ctx, getVariantSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting variant %q: %w", id, err)
	}
	v, err := pgx.CollectExactlyOneRow(rows, scanVariant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrVariantNotFound
		}
		return nil, fmt.Errorf("getting variant %q: %w", id, err)
	}
	return &v, nil
}

// GetShopByOwner returns catalog.ErrShopNotFound when the user owns no shop.
func (r *CatalogRepository) GetShopByOwner(ctx context.Context, ownerID string) (*catalog.Shop, error) {
	var s catalog.Shop
	err := r.pool.QueryRow(ctx, getShopByOwnerSQL, ownerID).Scan(&s.ID, &s.OwnerID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrShopNotFound
		}
		return nil, fmt.Errorf("getting shop of owner %q: %w", ownerID, err)
	}
	return &s, nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.ShopID, &p.Name, &p.Description, &p.Category)
	return p, err
}

func scanVariant(row pgx.CollectableRow) (catalog.Variant, error) {
	var (
		v     catalog.Variant
		stock int32
	)
	err := row.Scan(&v.ID, &v.ProductID, &v.Name, &v.Price, &stock)
	v.Stock = int(stock)
	return v, err
}
