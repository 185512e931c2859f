package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/StorefrontGo/internal/domain"
)

const (
	productKeyPrefix = "product:"
	postKeyPrefix    = "post:"
)

// EntityCache is a read-through JSON cache for product and blog post reads.
// A cache miss is reported as found=false, never as an error; callers fall
// back to the primary store. Every aggregate-mutating commit and every CRUD
// update invalidates the affected key.
type EntityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEntityCache creates a new Redis-backed entity cache.
func NewEntityCache(client *redis.Client, ttl time.Duration) *EntityCache {
	return &EntityCache{
		client: client,
		ttl:    ttl,
	}
}

// GetProduct retrieves a cached product by ID.
func (c *EntityCache) GetProduct(ctx context.Context, id string) (*domain.Product, bool, error) {
	var p domain.Product
	found, err := c.get(ctx, productKeyPrefix+id, &p)
	if err != nil || !found {
		return nil, false, err
	}
	return &p, true, nil
}

// SetProduct caches a product with the configured TTL.
func (c *EntityCache) SetProduct(ctx context.Context, p *domain.Product) error {
	return c.set(ctx, productKeyPrefix+p.ID, p)
}

// InvalidateProduct removes a product from the cache.
func (c *EntityCache) InvalidateProduct(ctx context.Context, id string) error {
	return c.del(ctx, productKeyPrefix+id)
}

// GetPost retrieves a cached blog post by ID.
func (c *EntityCache) GetPost(ctx context.Context, id string) (*domain.BlogPost, bool, error) {
	var p domain.BlogPost
	found, err := c.get(ctx, postKeyPrefix+id, &p)
	if err != nil || !found {
		return nil, false, err
	}
	return &p, true, nil
}

// SetPost caches a blog post with the configured TTL.
func (c *EntityCache) SetPost(ctx context.Context, p *domain.BlogPost) error {
	return c.set(ctx, postKeyPrefix+p.ID, p)
}

// InvalidatePost removes a blog post from the cache.
func (c *EntityCache) InvalidatePost(ctx context.Context, id string) error {
	return c.del(ctx, postKeyPrefix+id)
}

func (c *EntityCache) get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("unmarshal cached %s: %w", key, err)
	}

	return true, nil
}

func (c *EntityCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

func (c *EntityCache) del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}

	return nil
}
