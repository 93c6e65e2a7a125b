// Package cartstate persists serialized POS carts under the cart namespace key.
package cartstate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"nimbus-pos/internal/cart"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Repository is a cart.Store that owns a connection.
type Repository interface {
	cart.Store
	// Ping reports whether the backend can serve requests.
	Ping(ctx context.Context) error
	Close() error
}

type Options struct {
	Backend    string
	SQLitePath string
	RedisAddr  string
	TTL        time.Duration
	// Pool backs the postgres backend.
	Pool       *pgxpool.Pool
}

// Open builds the repository selected by opts.Backend.
func Open(ctx context.Context, opts Options, logger *log.Logger) (Repository, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendSQLite:
		return OpenSQLite(ctx, opts.SQLitePath, logger)
	case BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("ping redis %s: %w", opts.RedisAddr, err)
		}
		return NewRedis(client, opts.TTL, logger), nil
	case BackendMemory:
		return NewMemory(), nil
	case BackendPostgres:
		if opts.Pool == nil {
			return nil, errors.New("postgres cart backend needs a connection pool")
		}
		return NewPostgres(opts.Pool, logger), nil
	default:
		return nil, fmt.Errorf("unknown cart backend %q", opts.Backend)
	}
}
