package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantex/marketpulse/internal/model"
)

const latestPriceTTL = 24 * time.Hour

// Cache mirrors the newest price point per symbol in Redis for O(1) latest
// price lookups. Strictly best-effort; the pipeline never depends on it.
type Cache struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

// NewCache creates a Redis-backed latest-price cache.
func NewCache(addr string) *Cache {
	return &Cache{
		rdb:    redis.NewClient(&redis.Options{Addr: addr}),
		logger: log.With().Str("component", "price_cache").Logger(),
	}
}

func latestKey(symbol string) string {
	return "latest:" + symbol
}

// SetLatest stores the newest price point for its symbol.
func (c *Cache) SetLatest(ctx context.Context, p model.PricePoint) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling price point: %w", err)
	}
	if err := c.rdb.Set(ctx, latestKey(p.Symbol), data, latestPriceTTL).Err(); err != nil {
		return fmt.Errorf("caching latest price: %w", err)
	}
	return nil
}

// Latest returns the cached newest price point for a symbol, or nil when
// nothing is cached.
func (c *Cache) Latest(ctx context.Context, symbol string) (*model.PricePoint, error) {
	data, err := c.rdb.Get(ctx, latestKey(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest price: %w", err)
	}

	var p model.PricePoint
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding cached price: %w", err)
	}
	return &p, nil
}

// Ping checks the connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
