package seed

import (
	"context"
	"testing"

	"nimbus-pos/internal/db/dbtest"
)

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)

	first, err := Apply(ctx, pool, "owner-1")
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	second, err := Apply(ctx, pool, "owner-1")
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if first != second {
		t.Fatalf("expected same store, got %s and %s", first, second)
	}

	var products, categories, members int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM products WHERE store_id = $1`, first).Scan(&products); err != nil {
		t.Fatalf("count products: %v", err)
	}
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM product_categories WHERE store_id = $1`, first).Scan(&categories); err != nil {
		t.Fatalf("count categories: %v", err)
	}
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM store_members WHERE store_id = $1`, first).Scan(&members); err != nil {
		t.Fatalf("count members: %v", err)
	}
	if products != len(demoProducts) || categories != 2 || members != 1 {
		t.Fatalf("unexpected counts products=%d categories=%d members=%d", products, categories, members)
	}
}
