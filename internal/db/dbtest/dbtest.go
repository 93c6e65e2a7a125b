// Package dbtest opens the integration-test database. Tests are skipped when
// TEST_DB_DSN is unset.
package dbtest

import (
	"context"
	"os"
	"testing"

	"nimbus-pos/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool connects to TEST_DB_DSN, applies migrations and truncates every table.
func Pool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE pos_carts, sale_items, sales, products, product_categories, store_members, stores RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return pool
}

// InsertStore creates a store owned by ownerID and returns its id.
func InsertStore(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name, ownerID string) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx, `INSERT INTO stores (name, owner_id, tax_rate_permyriad) VALUES ($1, $2, 800) RETURNING id::text`, name, ownerID).Scan(&id)
	if err != nil {
		t.Fatalf("insert store: %v", err)
	}
	return id
}
