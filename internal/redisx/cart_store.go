package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-bookstore-carts/internal/carts"
	"github.com/redis/go-redis/v9"
	"time"
)

// CartStore keeps cart snapshots in Redis. The key TTL is only garbage
// collection; freshness is decided by the registry from LastTouchedAt.
type CartStore struct {
	Redis     *redis.Client
	Retention time.Duration // 0 -> TTLCartRetention
}

func (s *CartStore) Get(ctx context.Context, id string) (*carts.Cart, error) {
	b, err := s.Redis.Get(ctx, fmt.Sprintf(KeyCart, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, carts.ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	var c carts.Cart
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", id, err)
	}
	return &c, nil
}

func (s *CartStore) Put(ctx context.Context, c *carts.Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, fmt.Sprintf(KeyCart, c.ID), b, s.retention()).Err()
}

func (s *CartStore) retention() time.Duration {
	if s.Retention > 0 {
		return s.Retention
	}
	return TTLCartRetention
}
