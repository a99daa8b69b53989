package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Cache is the redis-backed cache for rendered search result pages.
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

const searchResultsKey = "search:results:%s"

// CacheSearchResults stores a result page under the given key with a TTL.
func (c *Cache) CacheSearchResults(ctx context.Context, key string, results interface{}, expiration time.Duration) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal search results: %w", err)
	}

	return c.client.Set(ctx, fmt.Sprintf(searchResultsKey, key), data, expiration).Err()
}

// GetCachedSearchResults loads a previously cached result page.
func (c *Cache) GetCachedSearchResults(ctx context.Context, key string, result interface{}) error {
	data, err := c.client.Get(ctx, fmt.Sprintf(searchResultsKey, key)).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), result)
}

// InvalidateSearchCache drops the cached page for a key.
func (c *Cache) InvalidateSearchCache(ctx context.Context, key string) error {
	return c.client.Del(ctx, fmt.Sprintf(searchResultsKey, key)).Err()
}
