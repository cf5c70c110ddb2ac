package source

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
)

// addTTLJitter adds up to ±15s random jitter to ttl so widgets sharing a
// sheet do not all miss at once.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= time.Minute {
		return ttl
	}
	jitter := time.Duration(rand.Intn(30)-15) * time.Second
	return ttl + jitter
}

// cachedValues is a read-through over the sheet values. A hit is returned
// immediately and refreshed in the background; a miss fetches inline and
// populates the cache asynchronously. Cache errors are treated as misses.
func (l *Loader) cachedValues(ctx context.Context) ([][]any, error) {
	if l.cache == nil {
		return l.fetcher.Values(ctx)
	}

	var cached [][]any
	err := l.cache.Get(ctx, l.cacheKey, &cached)
	switch {
	case err == nil && len(cached) > 0:
		l.logger.Debug("cache hit", zap.String("key", l.cacheKey))
		l.refreshInBackground()
		return cached, nil
	case err == nil, errors.Is(err, redis.Nil):
		l.logger.Debug("cache miss", zap.String("key", l.cacheKey))
	default:
		l.logger.Warn("cache get error (treating as miss)", zap.String("key", l.cacheKey), zap.Error(err))
	}

	values, err := l.fetcher.Values(ctx)
	if err != nil {
		return nil, err
	}

	l.background.Add(1)
	go func() {
		defer l.background.Done()
		l.store(values)
	}()
	return values, nil
}

func (l *Loader) refreshInBackground() {
	l.background.Add(1)
	go func() {
		defer l.background.Done()
		_, _, _ = l.sf.Do(l.cacheKey+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			values, err := l.fetcher.Values(ctx)
			if err != nil {
				l.logger.Warn("background refresh failed", zap.String("key", l.cacheKey), zap.Error(err))
				return nil, err
			}
			l.store(values)
			return values, nil
		})
	}()
}

func (l *Loader) store(values [][]any) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
	defer cancel()

	ttl := addTTLJitter(l.cacheTTL)
	if err := l.cache.Set(ctx, l.cacheKey, values, ttl); err != nil {
		l.logger.Warn("failed to update cache", zap.String("key", l.cacheKey), zap.Error(err))
		return
	}
	l.logger.Debug("cache populated", zap.String("key", l.cacheKey), zap.Duration("ttl", ttl))
}
