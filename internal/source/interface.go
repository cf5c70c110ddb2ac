package source

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/survey-table/internal/survey"
)

var (
	ErrSourceUnavailable = errors.New("survey source unavailable")
	ErrNoData            = errors.New("survey source returned no values")
	// ErrStale accompanies rows served from the last saved snapshot after the
	// source failed. The rows are usable.
	ErrStale = errors.New("serving last saved snapshot")
	// ErrLoaderClosed is returned by Load after Close.
	ErrLoaderClosed = errors.New("loader closed")
)

// ValueFetcher returns the raw sheet grid, header row first.
type ValueFetcher interface {
	Values(ctx context.Context) ([][]any, error)
}

// Cacher defines the interface for cache operations.
type Cacher interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// SnapshotStore keeps the last rows that were loaded successfully.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, rows []survey.Row) error
	LatestSnapshot(ctx context.Context) ([]survey.Row, error)
}
