package redisx

import (
	"context"
	"errors"
	"fmt"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/redis/go-redis/v9"
	"time"
)

type IdempotencyStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewIdempotencyStore(rdb redis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: TTLIdempotency}
}

func (s *IdempotencyStore) Lookup(ctx context.Context, market domain.MarketplaceID, buyerID, key string) (string, bool, error) {
	orderID, err := s.rdb.Get(ctx, checkoutKey(market, buyerID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("rdb.Get: %w", err)
	}

	return orderID, true, nil
}

// Remember keeps the first order recorded for a key; later calls do not overwrite it.
func (s *IdempotencyStore) Remember(ctx context.Context, market domain.MarketplaceID, buyerID, key, orderID string) error {
	if err := s.rdb.SetNX(ctx, checkoutKey(market, buyerID, key), orderID, s.ttl).Err(); err != nil {
		return fmt.Errorf("rdb.SetNX: %w", err)
	}

	return nil
}

func checkoutKey(market domain.MarketplaceID, buyerID, key string) string {
	return fmt.Sprintf(KeyIdemCheckout, market, buyerID, key)
}
