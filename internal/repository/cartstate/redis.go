package cartstate

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"nimbus-pos/internal/cart"

	"github.com/redis/go-redis/v9"
)

type redisRepo struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// NewRedis stores carts as JSON strings. A zero ttl keeps them forever.
func NewRedis(client *redis.Client, ttl time.Duration, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &redisRepo{client: client, ttl: ttl, logger: logger}
}

func (r *redisRepo) Load(ctx context.Context, key string) (cart.State, error) {
	payload, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cart.State{}, cart.ErrNoState
		}
		r.logger.Printf("cartstate redis: load key=%s error=%v", key, err)
		return cart.State{}, err
	}
	return cart.DecodeState(payload)
}

func (r *redisRepo) Save(ctx context.Context, key string, st cart.State) error {
	payload, err := cart.EncodeState(st)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		r.logger.Printf("cartstate redis: save key=%s error=%v", key, err)
		return err
	}
	return nil
}

func (r *redisRepo) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisRepo) Close() error {
	return r.client.Close()
}
