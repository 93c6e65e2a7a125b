package category

import (
	"context"
	"io"
	"log"

	"nimbus-pos/internal/db"
	"nimbus-pos/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

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

func (r *postgresRepo) List(ctx context.Context, storeID string) ([]domain.Category, error) {
	const q = `
SELECT c.id::text, c.store_id::text, c.name, COUNT(p.id), c.created_at
FROM product_categories c
LEFT JOIN products p ON p.category_id = c.id
WHERE c.store_id = $1
GROUP BY c.id
ORDER BY c.name ASC
`
	rows, err := r.pool.Query(ctx, q, storeID)
	if err != nil {
		r.logger.Printf("category repo: list store_id=%s error=%v", storeID, err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.StoreID, &c.Name, &c.ProductCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Get(ctx context.Context, storeID, id string) (*domain.Category, error) {
	const q = `
SELECT c.id::text, c.store_id::text, c.name,
       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id), c.created_at
FROM product_categories c
WHERE c.store_id = $1 AND c.id = $2
`
	var c domain.Category
	if err := r.pool.QueryRow(ctx, q, storeID, id).Scan(&c.ID, &c.StoreID, &c.Name, &c.ProductCount, &c.CreatedAt); err != nil {
		return nil, db.MapError(err)
	}
	return &c, nil
}

func (r *postgresRepo) Create(ctx context.Context, in domain.Category) (*domain.Category, error) {
	const q = `
INSERT INTO product_categories (store_id, name)
VALUES ($1, $2)
RETURNING id::text, created_at
`
	out := domain.Category{StoreID: in.StoreID, Name: in.Name}
	if err := r.pool.QueryRow(ctx, q, in.StoreID, in.Name).Scan(&out.ID, &out.CreatedAt); err != nil {
		r.logger.Printf("category repo: create store_id=%s name=%q error=%v", in.StoreID, in.Name, err)
		return nil, db.MapError(err)
	}
	return &out, nil
}

func (r *postgresRepo) Rename(ctx context.Context, storeID, id, name string) (*domain.Category, error) {
	const q = `
UPDATE product_categories SET name = $3
WHERE store_id = $1 AND id = $2
RETURNING id::text, store_id::text, name, created_at
`
	var c domain.Category
	if err := r.pool.QueryRow(ctx, q, storeID, id, name).Scan(&c.ID, &c.StoreID, &c.Name, &c.CreatedAt); err != nil {
		return nil, db.MapError(err)
	}
	return &c, nil
}

func (r *postgresRepo) Delete(ctx context.Context, storeID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM product_categories WHERE store_id = $1 AND id = $2`, storeID, id)
	if err != nil {
		r.logger.Printf("category repo: delete store_id=%s id=%s error=%v", storeID, id, err)
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Ensure(ctx context.Context, storeID, name string) (*domain.Category, error) {
	const q = `
INSERT INTO product_categories (store_id, name)
VALUES ($1, $2)
ON CONFLICT (store_id, name) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text, created_at
`
	out := domain.Category{StoreID: storeID, Name: name}
	if err := r.pool.QueryRow(ctx, q, storeID, name).Scan(&out.ID, &out.CreatedAt); err != nil {
		r.logger.Printf("category repo: ensure store_id=%s name=%q error=%v", storeID, name, err)
		return nil, db.MapError(err)
	}
	return &out, nil
}
