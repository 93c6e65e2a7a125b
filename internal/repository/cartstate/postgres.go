package cartstate

import (
	"context"
	"errors"
	"io"
	"log"

	"nimbus-pos/internal/cart"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres stores carts in the pos_carts table. The pool stays owned by
// the caller; Close is a no-op.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Load(ctx context.Context, key string) (cart.State, error) {
	var payload string
	err := r.pool.QueryRow(ctx, `SELECT payload::text FROM pos_carts WHERE key = $1`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cart.State{}, cart.ErrNoState
		}
		r.logger.Printf("cartstate postgres: load key=%s error=%v", key, err)
		return cart.State{}, err
	}
	return cart.DecodeState([]byte(payload))
}

func (r *postgresRepo) Save(ctx context.Context, key string, st cart.State) error {
	payload, err := cart.EncodeState(st)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO pos_carts (key, payload, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (key) DO UPDATE SET
    payload = EXCLUDED.payload,
    updated_at = now()
`
	if _, err := r.pool.Exec(ctx, q, key, string(payload)); err != nil {
		r.logger.Printf("cartstate postgres: save key=%s error=%v", key, err)
		return err
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM pos_carts WHERE key = $1`, key); err != nil {
		r.logger.Printf("cartstate postgres: delete key=%s error=%v", key, err)
		return err
	}
	return nil
}

func (r *postgresRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *postgresRepo) Close() error {
	return nil
}
