package seed

import (
	"context"
	"errors"
	"fmt"

	"nimbus-pos/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DemoStoreName = "Demo Corner Shop"
	DemoCashierID = "demo-cashier"
)

type productSeed struct {
	Category   string
	SKU        string
	Name       string
	PriceCents int64
	CostCents  int64
	Stock      int
}

var demoProducts = []productSeed{
	{Category: "Drinks", SKU: "DRI-COLA01", Name: "Cola 330ml", PriceCents: 299, CostCents: 110, Stock: 48},
	{Category: "Drinks", SKU: "DRI-WATR01", Name: "Still Water 500ml", PriceCents: 89, CostCents: 25, Stock: 60},
	{Category: "Snacks", SKU: "SNA-CHIP01", Name: "Salted Chips", PriceCents: 149, CostCents: 60, Stock: 3},
	{Category: "Snacks", SKU: "SNA-CHOC01", Name: "Dark Chocolate Bar", PriceCents: 225, CostCents: 90, Stock: 20},
}

// Apply inserts a demo store owned by ownerID with a cashier, categories and
// products, and returns the store id. It is idempotent.
func Apply(ctx context.Context, pool *pgxpool.Pool, ownerID string) (string, error) {
	storeID, err := ensureStore(ctx, pool, ownerID)
	if err != nil {
		return "", fmt.Errorf("ensure store: %w", err)
	}

	const member = `
INSERT INTO store_members (store_id, user_id, role)
VALUES ($1, $2, $3)
ON CONFLICT (store_id, user_id) DO NOTHING
`
	if _, err := pool.Exec(ctx, member, storeID, DemoCashierID, domain.RoleCashier); err != nil {
		return "", fmt.Errorf("ensure cashier: %w", err)
	}

	categories := make(map[string]string)
	for _, p := range demoProducts {
		catID, ok := categories[p.Category]
		if !ok {
			catID, err = ensureCategory(ctx, pool, storeID, p.Category)
			if err != nil {
				return "", fmt.Errorf("ensure category %s: %w", p.Category, err)
			}
			categories[p.Category] = catID
		}
		if err := upsertProduct(ctx, pool, storeID, catID, p); err != nil {
			return "", fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}
	return storeID, nil
}

func ensureStore(ctx context.Context, pool *pgxpool.Pool, ownerID string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, `SELECT id::text FROM stores WHERE owner_id = $1 AND name = $2`, ownerID, DemoStoreName).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	const q = `
INSERT INTO stores (name, currency, tax_rate_permyriad, owner_id)
VALUES ($1, 'USD', 800, $2)
RETURNING id::text
`
	if err := pool.QueryRow(ctx, q, DemoStoreName, ownerID).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, storeID, name string) (string, error) {
	const q = `
INSERT INTO product_categories (store_id, name)
VALUES ($1, $2)
ON CONFLICT (store_id, name) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, storeID, name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, storeID, categoryID string, p productSeed) error {
	const q = `
INSERT INTO products (store_id, category_id, sku, name, price_cents, cost_price_cents, current_stock)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (store_id, sku) DO UPDATE
SET category_id = EXCLUDED.category_id,
    name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents,
    cost_price_cents = EXCLUDED.cost_price_cents,
    current_stock = EXCLUDED.current_stock,
    updated_at = now()
`
	_, err := pool.Exec(ctx, q, storeID, categoryID, p.SKU, p.Name, p.PriceCents, p.CostCents, p.Stock)
	return err
}
