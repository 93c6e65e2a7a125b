package cartstate

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"nimbus-pos/internal/cart"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

type sqliteRepo struct {
	db     *sql.DB
	logger *log.Logger
}

// OpenSQLite opens (or creates) the cart database at path.
func OpenSQLite(ctx context.Context, path string, logger *log.Logger) (Repository, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; concurrent connections only produce SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply cart schema: %w", err)
	}

	return &sqliteRepo{db: db, logger: logger}, nil
}

func (r *sqliteRepo) Load(ctx context.Context, key string) (cart.State, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM cart_state WHERE key = ?`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cart.State{}, cart.ErrNoState
		}
		r.logger.Printf("cartstate sqlite: load key=%s error=%v", key, err)
		return cart.State{}, err
	}
	return cart.DecodeState([]byte(payload))
}

func (r *sqliteRepo) Save(ctx context.Context, key string, st cart.State) error {
	payload, err := cart.EncodeState(st)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO cart_state (key, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET
    payload = excluded.payload,
    updated_at = excluded.updated_at
`
	if _, err := r.db.ExecContext(ctx, q, key, string(payload), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		r.logger.Printf("cartstate sqlite: save key=%s error=%v", key, err)
		return err
	}
	return nil
}

func (r *sqliteRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_state WHERE key = ?`, key); err != nil {
		r.logger.Printf("cartstate sqlite: delete key=%s error=%v", key, err)
		return err
	}
	return nil
}

func (r *sqliteRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *sqliteRepo) Close() error {
	return r.db.Close()
}
