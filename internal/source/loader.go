package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/survey-table/internal/survey"
	"github.com/godilite/survey-table/internal/textnorm"
)

const (
	defaultCacheTTL = 10 * time.Minute
	loadKey         = "load"
)

// Loader turns the sheet grid into survey rows. Concurrent Load calls share
// one outstanding fetch; a caller that gives up does not cancel the fetch
// for the others.
type Loader struct {
	fetcher   ValueFetcher
	cache     Cacher
	cacheKey  string
	cacheTTL  time.Duration
	snapshots SnapshotStore
	timeout   time.Duration
	logger    *zap.Logger

	sf singleflight.Group

	// background counts in-flight loads and cache work. mu guards closed so
	// no work is added once Close has started waiting.
	mu         sync.Mutex
	closed     bool
	background sync.WaitGroup
}

type LoaderOption func(*Loader)

// WithCache enables the read-through cache of sheet values under key.
func WithCache(c Cacher, key string, ttl time.Duration) LoaderOption {
	return func(l *Loader) {
		l.cache = c
		l.cacheKey = "sheets:values:" + key
		if ttl > 0 {
			l.cacheTTL = ttl
		}
	}
}

// WithSnapshots stores every successful load and serves the last one when the
// source fails.
func WithSnapshots(s SnapshotStore) LoaderOption {
	return func(l *Loader) { l.snapshots = s }
}

func WithLoadTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

func NewLoader(fetcher ValueFetcher, logger *zap.Logger, opts ...LoaderOption) *Loader {
	if fetcher == nil {
		panic("nil ValueFetcher provided to NewLoader")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{
		fetcher:  fetcher,
		cacheTTL: defaultCacheTTL,
		timeout:  defaultFetchTimeout,
		logger:   logger.Named("source"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the current survey rows. When the source fails and a snapshot
// exists, the snapshot rows are returned together with an error wrapping
// ErrStale.
func (l *Loader) Load(ctx context.Context) ([]survey.Row, error) {
	if !l.track() {
		return nil, ErrLoaderClosed
	}
	ch := l.sf.DoChan(loadKey, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		return l.load(loadCtx)
	})

	select {
	case <-ctx.Done():
		// The shared load keeps running for other callers; stay counted
		// until it finishes.
		go func() {
			<-ch
			l.background.Done()
		}()
		return nil, ctx.Err()
	case res := <-ch:
		l.background.Done()
		if res.Err != nil && !errors.Is(res.Err, ErrStale) {
			return nil, res.Err
		}
		if res.Shared {
			l.logger.Debug("joined in-flight load")
		}
		rows := res.Val.([]survey.Row)
		return append([]survey.Row(nil), rows...), res.Err
	}
}

// Wait blocks until in-flight loads and background cache work have finished.
func (l *Loader) Wait() {
	l.background.Wait()
}

// Close rejects new loads and waits for in-flight ones, including their
// cache writes and snapshot saves. Call it before closing the cache and the
// database.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.background.Wait()
}

// track counts one unit of work unless the loader is closed.
func (l *Loader) track() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.background.Add(1)
	return true
}

func (l *Loader) load(ctx context.Context) ([]survey.Row, error) {
	values, err := l.cachedValues(ctx)
	if err == nil {
		rows := survey.FromRecords(survey.FromSheetValues(values))
		l.warnMisencoded(rows)
		l.saveSnapshot(ctx, rows)
		l.logger.Info("survey rows loaded", zap.Int("rows", len(rows)))
		return rows, nil
	}

	l.logger.Warn("survey source failed", zap.Error(err))
	if rows, ok := l.fallback(ctx); ok {
		return rows, fmt.Errorf("%w: %w", ErrStale, err)
	}
	return nil, fmt.Errorf("load survey rows: %w", err)
}

func (l *Loader) saveSnapshot(ctx context.Context, rows []survey.Row) {
	if l.snapshots == nil || len(rows) == 0 {
		return
	}
	if err := l.snapshots.SaveSnapshot(ctx, rows); err != nil {
		l.logger.Warn("failed to save snapshot", zap.Error(err))
	}
}

func (l *Loader) fallback(ctx context.Context) ([]survey.Row, bool) {
	if l.snapshots == nil {
		return nil, false
	}
	rows, err := l.snapshots.LatestSnapshot(ctx)
	if err != nil {
		l.logger.Debug("no snapshot to fall back to", zap.Error(err))
		return nil, false
	}
	if len(rows) == 0 {
		return nil, false
	}
	l.logger.Warn("serving snapshot rows", zap.Int("rows", len(rows)))
	return rows, true
}

func (l *Loader) warnMisencoded(rows []survey.Row) {
	for _, r := range rows {
		if textnorm.LooksMisencoded(r.CustomerName) || textnorm.LooksMisencoded(r.AccountManager) {
			l.logger.Warn("row still looks mis-encoded after normalization",
				zap.String("id", r.ID),
				zap.String("customer", r.CustomerName))
		}
	}
}
