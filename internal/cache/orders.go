// Package cache is a best-effort redis cache-aside layer for per-customer
// order lists. A miss or a redis failure always falls through to the store;
// writes to orders delete the affected key.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/craftculture/orders-api/internal/models"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("order cache miss")

const userOrdersKey = "user_orders:%s"

type OrderCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func New(client *redis.Client, ttl time.Duration) *OrderCache {
	return &OrderCache{client: client, baseTTL: ttl}
}

func (c *OrderCache) GetUserOrders(ctx context.Context, username string) ([]models.Order, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf(userOrdersKey, username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var orders []models.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("unmarshal cached orders: %w", err)
	}

	return orders, nil
}

func (c *OrderCache) SetUserOrders(ctx context.Context, username string, orders []models.Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("marshal orders: %w", err)
	}

	// Jitter spreads out expiry so a burst of writes doesn't stampede.
	ttl := c.baseTTL + time.Duration(rand.Intn(60))*time.Second
	if err := c.client.Set(ctx, fmt.Sprintf(userOrdersKey, username), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

func (c *OrderCache) InvalidateUser(ctx context.Context, username string) error {
	if err := c.client.Del(ctx, fmt.Sprintf(userOrdersKey, username)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}
