package searchapi

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/inkfold/inkfold/pkg/utils"
)

// CachingFetcher wraps a Fetcher with an in-memory LRU of (query, page)
// responses. The controller deliberately refetches on every committed query;
// this wrapper is an opt-in layer for clients that want to soften that.
type CachingFetcher struct {
	inner  Fetcher
	cache  *lru.Cache[string, *Page]
	logger *logrus.Logger
}

func NewCachingFetcher(inner Fetcher, size int, logger *logrus.Logger) (*CachingFetcher, error) {
	cache, err := lru.New[string, *Page](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}
	return &CachingFetcher{
		inner:  inner,
		cache:  cache,
		logger: logger,
	}, nil
}

func (f *CachingFetcher) FetchPage(ctx context.Context, query string, page int) (*Page, error) {
	key := cacheKey(query, page)

	if cached, ok := f.cache.Get(key); ok {
		f.logger.WithFields(logrus.Fields{
			"query": query,
			"page":  page,
		}).Debug("Search page served from cache")
		return cached, nil
	}

	result, err := f.inner.FetchPage(ctx, query, page)
	if err != nil {
		return nil, err
	}

	// Hits are immutable, so sharing the cached value is safe.
	f.cache.Add(key, result)
	return result, nil
}

func cacheKey(query string, page int) string {
	return utils.MD5Hash(fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSpace(query)), page))
}
