package product

import (
	"context"
	"io"
	"log"
	"strings"

	"nimbus-pos/internal/db"
	"nimbus-pos/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id::text, store_id::text, category_id::text, name, sku, barcode, description,
       price_cents, cost_price_cents, current_stock, image_url, is_active, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.StoreID, &p.CategoryID, &p.Name, &p.SKU, &p.Barcode, &p.Description,
		&p.PriceCents, &p.CostPriceCents, &p.CurrentStock, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) List(ctx context.Context, storeID string, f ListFilter) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE store_id = $1
  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR sku ILIKE '%' || $2 || '%' OR barcode ILIKE '%' || $2 || '%')
  AND ($3 = '' OR category_id = NULLIF($3, '')::uuid)
  AND (NOT $4 OR is_active)
ORDER BY name ASC
`
	search := strings.TrimSpace(f.Search)
	rows, err := r.pool.Query(ctx, q, storeID, search, f.CategoryID, f.ActiveOnly)
	if err != nil {
		r.logger.Printf("product repo: list store_id=%s error=%v", storeID, err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows store_id=%s error=%v", storeID, err)
		return nil, err
	}
	r.logger.Printf("product repo: list store_id=%s search=%q count=%d", storeID, search, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, storeID, id string) (*domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE store_id = $1 AND id = $2`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, storeID, id))
	if err != nil {
		err = db.MapError(err)
		r.logger.Printf("product repo: get store_id=%s id=%s error=%v", storeID, id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Create(ctx context.Context, in domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (store_id, category_id, name, sku, barcode, description, price_cents, cost_price_cents, current_stock, image_url, is_active)
VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + productColumns
	p, err := scanProduct(r.pool.QueryRow(ctx, q, in.StoreID, categoryArg(in.CategoryID), in.Name, in.SKU, in.Barcode,
		in.Description, in.PriceCents, in.CostPriceCents, in.CurrentStock, in.ImageURL, in.IsActive))
	if err != nil {
		r.logger.Printf("product repo: create store_id=%s sku=%s error=%v", in.StoreID, in.SKU, err)
		return nil, db.MapError(err)
	}
	r.logger.Printf("product repo: created store_id=%s id=%s sku=%s", p.StoreID, p.ID, p.SKU)
	return p, nil
}

func (r *postgresRepo) Update(ctx context.Context, in domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products SET
    category_id = NULLIF($3, '')::uuid,
    name = $4,
    sku = $5,
    barcode = $6,
    description = $7,
    price_cents = $8,
    cost_price_cents = $9,
    current_stock = $10,
    image_url = $11,
    is_active = $12,
    updated_at = now()
WHERE store_id = $1 AND id = $2
RETURNING ` + productColumns
	p, err := scanProduct(r.pool.QueryRow(ctx, q, in.StoreID, in.ID, categoryArg(in.CategoryID), in.Name, in.SKU, in.Barcode,
		in.Description, in.PriceCents, in.CostPriceCents, in.CurrentStock, in.ImageURL, in.IsActive))
	if err != nil {
		r.logger.Printf("product repo: update store_id=%s id=%s error=%v", in.StoreID, in.ID, err)
		return nil, db.MapError(err)
	}
	return p, nil
}

func (r *postgresRepo) Delete(ctx context.Context, storeID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE store_id = $1 AND id = $2`, storeID, id)
	if err != nil {
		r.logger.Printf("product repo: delete store_id=%s id=%s error=%v", storeID, id, err)
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) CountLowStock(ctx context.Context, storeID string, threshold int) (int, error) {
	const q = `SELECT COUNT(*) FROM products WHERE store_id = $1 AND is_active AND current_stock <= $2`
	var n int
	if err := r.pool.QueryRow(ctx, q, storeID, threshold).Scan(&n); err != nil {
		r.logger.Printf("product repo: low stock store_id=%s error=%v", storeID, err)
		return 0, err
	}
	return n, nil
}

func (r *postgresRepo) UpsertBySKU(ctx context.Context, in domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (store_id, category_id, name, sku, barcode, description, price_cents, cost_price_cents, current_stock, image_url, is_active)
VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (store_id, sku) DO UPDATE SET
    category_id = COALESCE(EXCLUDED.category_id, products.category_id),
    name = EXCLUDED.name,
    barcode = EXCLUDED.barcode,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    cost_price_cents = EXCLUDED.cost_price_cents,
    current_stock = EXCLUDED.current_stock,
    image_url = EXCLUDED.image_url,
    is_active = EXCLUDED.is_active,
    updated_at = now()
RETURNING ` + productColumns
	p, err := scanProduct(r.pool.QueryRow(ctx, q, in.StoreID, categoryArg(in.CategoryID), in.Name, in.SKU, in.Barcode,
		in.Description, in.PriceCents, in.CostPriceCents, in.CurrentStock, in.ImageURL, in.IsActive))
	if err != nil {
		r.logger.Printf("product repo: upsert store_id=%s sku=%s error=%v", in.StoreID, in.SKU, err)
		return nil, db.MapError(err)
	}
	r.logger.Printf("product repo: upserted store_id=%s sku=%s id=%s", p.StoreID, p.SKU, p.ID)
	return p, nil
}

func categoryArg(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}
