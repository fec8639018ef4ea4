package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallbiznis/valora-directory/internal/domain"
	"github.com/smallbiznis/valora-directory/internal/repository"
)

// RedisOrgCache caches resolved orgs by slug so the hot path of every
// request does not hit Postgres.
type RedisOrgCache struct {
	client redis.UniversalClient
}

var _ repository.OrgCache = (*RedisOrgCache)(nil)

// NewRedisOrgCache constructs a Redis-backed org cache.
func NewRedisOrgCache(client redis.UniversalClient) *RedisOrgCache {
	return &RedisOrgCache{client: client}
}

func orgKey(slug string) string {
	return "org:slug:" + slug
}

// GetOrg returns the cached org for the slug, or (nil, nil) on miss.
func (c *RedisOrgCache) GetOrg(ctx context.Context, slug string) (*domain.Org, error) {
	payload, err := c.client.Get(ctx, orgKey(slug)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("load org: %w", err)
	}
	var org domain.Org
	if err := json.Unmarshal(payload, &org); err != nil {
		return nil, fmt.Errorf("decode org: %w", err)
	}
	return &org, nil
}

// SaveOrg stores the org under its slug with TTL.
func (c *RedisOrgCache) SaveOrg(ctx context.Context, org domain.Org, ttl time.Duration) error {
	payload, err := json.Marshal(org)
	if err != nil {
		return fmt.Errorf("marshal org: %w", err)
	}
	if err := c.client.Set(ctx, orgKey(org.Slug), payload, ttl).Err(); err != nil {
		return fmt.Errorf("persist org: %w", err)
	}
	return nil
}
