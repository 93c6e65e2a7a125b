package member

import (
	"context"
	"io"
	"log"

	"nimbus-pos/internal/db"
	"nimbus-pos/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const memberColumns = `id::text, store_id::text, user_id, role, pin_hash, created_at`

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

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	if err := row.Scan(&m.ID, &m.StoreID, &m.UserID, &m.Role, &m.PINHash, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *postgresRepo) List(ctx context.Context, storeID string) ([]domain.Member, error) {
	const q = `SELECT ` + memberColumns + ` FROM store_members WHERE store_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, q, storeID)
	if err != nil {
		r.logger.Printf("member repo: list store_id=%s error=%v", storeID, err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Get(ctx context.Context, storeID, userID string) (*domain.Member, error) {
	const q = `SELECT ` + memberColumns + ` FROM store_members WHERE store_id = $1 AND user_id = $2`
	m, err := scanMember(r.pool.QueryRow(ctx, q, storeID, userID))
	if err != nil {
		return nil, db.MapError(err)
	}
	return m, nil
}

func (r *postgresRepo) Add(ctx context.Context, in domain.Member) (*domain.Member, error) {
	const q = `
INSERT INTO store_members (store_id, user_id, role, pin_hash)
VALUES ($1, $2, $3, $4)
RETURNING ` + memberColumns
	m, err := scanMember(r.pool.QueryRow(ctx, q, in.StoreID, in.UserID, in.Role, in.PINHash))
	if err != nil {
		r.logger.Printf("member repo: add store_id=%s user=%s error=%v", in.StoreID, in.UserID, err)
		return nil, db.MapError(err)
	}
	r.logger.Printf("member repo: added store_id=%s user=%s role=%s", m.StoreID, m.UserID, m.Role)
	return m, nil
}

func (r *postgresRepo) Update(ctx context.Context, in domain.Member) (*domain.Member, error) {
	const q = `
UPDATE store_members SET role = $3, pin_hash = $4
WHERE store_id = $1 AND user_id = $2
RETURNING ` + memberColumns
	m, err := scanMember(r.pool.QueryRow(ctx, q, in.StoreID, in.UserID, in.Role, in.PINHash))
	if err != nil {
		return nil, db.MapError(err)
	}
	return m, nil
}

func (r *postgresRepo) Remove(ctx context.Context, storeID, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM store_members WHERE store_id = $1 AND user_id = $2`, storeID, userID)
	if err != nil {
		r.logger.Printf("member repo: remove store_id=%s user=%s error=%v", storeID, userID, err)
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
