package store

import (
	"context"
	"io"
	"log"

	"nimbus-pos/internal/db"
	"nimbus-pos/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const storeColumns = `id::text, name, logo_url, currency, tax_rate_permyriad, owner_id, created_at`

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

// Tax rates are persisted as hundredths of a percent.
func toPermyriad(percent decimal.Decimal) int64 {
	return percent.Shift(2).Round(0).IntPart()
}

func fromPermyriad(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}

func scanStore(row pgx.Row) (*domain.Store, error) {
	var s domain.Store
	var permyriad int64
	if err := row.Scan(&s.ID, &s.Name, &s.LogoURL, &s.Currency, &permyriad, &s.OwnerID, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.TaxRate = fromPermyriad(permyriad)
	return &s, nil
}

func (r *postgresRepo) Create(ctx context.Context, s domain.Store) (*domain.Store, error) {
	const q = `
INSERT INTO stores (name, logo_url, currency, tax_rate_permyriad, owner_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + storeColumns
	out, err := scanStore(r.pool.QueryRow(ctx, q, s.Name, s.LogoURL, s.Currency, toPermyriad(s.TaxRate), s.OwnerID))
	if err != nil {
		r.logger.Printf("store repo: create name=%s owner=%s error=%v", s.Name, s.OwnerID, err)
		return nil, db.MapError(err)
	}
	r.logger.Printf("store repo: created id=%s owner=%s", out.ID, out.OwnerID)
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	const q = `SELECT ` + storeColumns + ` FROM stores WHERE id = $1`
	out, err := scanStore(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, s domain.Store) (*domain.Store, error) {
	const q = `
UPDATE stores
SET name = $2, logo_url = $3, currency = $4, tax_rate_permyriad = $5
WHERE id = $1
RETURNING ` + storeColumns
	out, err := scanStore(r.pool.QueryRow(ctx, q, s.ID, s.Name, s.LogoURL, s.Currency, toPermyriad(s.TaxRate)))
	if err != nil {
		r.logger.Printf("store repo: update id=%s error=%v", s.ID, err)
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *postgresRepo) ListForUser(ctx context.Context, userID string) ([]domain.Store, error) {
	const q = `
SELECT ` + storeColumns + `
FROM stores s
WHERE s.owner_id = $1
   OR EXISTS (SELECT 1 FROM store_members m WHERE m.store_id = s.id AND m.user_id = $1)
ORDER BY s.name ASC, s.created_at ASC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		r.logger.Printf("store repo: list user=%s error=%v", userID, err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Store{}
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
