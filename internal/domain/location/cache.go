package location

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefixSearch = "places:search:"

// SearchCache stores successful search results by query
type SearchCache interface {
	Get(ctx context.Context, query string) ([]Place, bool, error)
	Set(ctx context.Context, query string, places []Place) error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache returns a cache backed by client, or nil when client is nil
// (Redis disabled).
func NewRedisCache(client *redis.Client, ttl time.Duration) SearchCache {
	if client == nil {
		return nil
	}
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, query string) ([]Place, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var places []Place
	if err := json.Unmarshal(raw, &places); err != nil {
		return nil, false, err
	}
	return places, true, nil
}

func (c *redisCache) Set(ctx context.Context, query string, places []Place) error {
	raw, err := json.Marshal(places)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(query), raw, c.ttl).Err()
}

func cacheKey(query string) string {
	return keyPrefixSearch + strings.TrimSpace(query)
}
