package source

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/godilite/survey-table/internal/source/mocks"
	"github.com/godilite/survey-table/internal/survey"
)

func sheetValues() [][]any {
	return [][]any{
		{"id", "Please provide your company name", "Name of designated account manager: ", "How likely are you to recommend Starlinks to other businesses", "How satisfied are you with the overall experience with Starlinks"},
		{"a", "Ø³Ø§ÙƒÙˆ", "Ahmed Saleem", float64(9), "4 - Satisfied"},
		{"b", "", "", float64(3), float64(2)},
		{"c", "Amazon", "Mai Hassan", float64(11), float64(5)},
	}
}

func staticFetcher(values [][]any) *mocks.MockFetcher {
	return &mocks.MockFetcher{
		ValuesFunc: func(context.Context) ([][]any, error) { return values, nil },
	}
}

func TestLoader_MapsSheetValuesToRows(t *testing.T) {
	l := NewLoader(staticFetcher(sheetValues()), zaptest.NewLogger(t))

	rows, err := l.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ساكو", rows[0].CustomerName)
	assert.Equal(t, 9, *rows[0].NPSScore)
	assert.Equal(t, 4, *rows[0].SatisfactionScore)
	assert.Equal(t, "c", rows[1].ID)
	assert.Nil(t, rows[1].NPSScore, "out-of-range score is absent")
}

func TestLoader_CoalescesConcurrentLoads(t *testing.T) {
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	fetcher := &mocks.MockFetcher{
		ValuesFunc: func(context.Context) ([][]any, error) {
			mu.Lock()
			inFlight++
			maxInFlight = max(maxInFlight, inFlight)
			mu.Unlock()

			time.Sleep(50 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
			return sheetValues(), nil
		},
	}
	l := NewLoader(fetcher, zaptest.NewLogger(t))

	var wg sync.WaitGroup
	results := make([][]survey.Row, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rows, err := l.Load(context.Background())
			assert.NoError(t, err)
			results[i] = rows
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight, "never more than one outstanding fetch")
	assert.Less(t, fetcher.Calls(), len(results))
	for _, rows := range results {
		assert.Len(t, rows, 2)
	}
}

func TestLoader_CallerCancellationDoesNotCancelSharedLoad(t *testing.T) {
	release := make(chan struct{})
	fetcher := &mocks.MockFetcher{
		ValuesFunc: func(ctx context.Context) ([][]any, error) {
			select {
			case <-release:
				return sheetValues(), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	l := NewLoader(fetcher, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return fetcher.Calls() == 1 }, time.Second, 5*time.Millisecond)

	secondRows := make(chan []survey.Row, 1)
	go func() {
		rows, _ := l.Load(context.Background())
		secondRows <- rows
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	assert.Len(t, <-secondRows, 2)
}

func TestLoader_CacheMissPopulatesCache(t *testing.T) {
	cache := mocks.NewMemoryCacher()
	fetcher := staticFetcher(sheetValues())
	l := NewLoader(fetcher, zaptest.NewLogger(t), WithCache(cache, "sheet-123", time.Minute))

	rows, err := l.Load(context.Background())
	l.Wait()

	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.True(t, cache.Has("sheets:values:sheet-123"))
}

func TestLoader_CacheHitServesCachedValuesAndRefreshes(t *testing.T) {
	cache := mocks.NewMemoryCacher()
	require.NoError(t, cache.Set(context.Background(), "sheets:values:sheet-123", [][]any{
		{"Please provide your company name", "Name of designated account manager: "},
		{"Cached Co", "Ahmed Saleem"},
	}, time.Minute))
	fetcher := staticFetcher(sheetValues())
	l := NewLoader(fetcher, zaptest.NewLogger(t), WithCache(cache, "sheet-123", time.Minute))

	rows, err := l.Load(context.Background())
	l.Wait()

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Cached Co", rows[0].CustomerName)
	assert.Equal(t, 1, fetcher.Calls(), "background refresh")

	rows, err = l.Load(context.Background())
	l.Wait()
	require.NoError(t, err)
	assert.Len(t, rows, 2, "refreshed values are served next")
}

func TestLoader_CacheErrorsAreMisses(t *testing.T) {
	cache := &mocks.MockCacher{
		GetFunc: func(context.Context, string, any) error { return errors.New("redis down") },
		SetFunc: func(context.Context, string, any, time.Duration) error { return errors.New("redis down") },
	}
	l := NewLoader(staticFetcher(sheetValues()), zaptest.NewLogger(t), WithCache(cache, "k", 0))

	rows, err := l.Load(context.Background())
	l.Wait()

	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestLoader_SavesSnapshotOnSuccess(t *testing.T) {
	var saved []survey.Row
	snapshots := &mocks.MockSnapshotStore{
		SaveSnapshotFunc: func(_ context.Context, rows []survey.Row) error {
			saved = rows
			return nil
		},
	}
	l := NewLoader(staticFetcher(sheetValues()), zaptest.NewLogger(t), WithSnapshots(snapshots))

	_, err := l.Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestLoader_FallsBackToSnapshot(t *testing.T) {
	fetcher := &mocks.MockFetcher{
		ValuesFunc: func(context.Context) ([][]any, error) {
			return nil, ErrSourceUnavailable
		},
	}
	snapshots := &mocks.MockSnapshotStore{
		LatestSnapshotFunc: func(context.Context) ([]survey.Row, error) {
			return []survey.Row{{ID: "s", CustomerName: "Snapshot Co"}}, nil
		},
	}
	l := NewLoader(fetcher, zaptest.NewLogger(t), WithSnapshots(snapshots))

	rows, err := l.Load(context.Background())

	assert.ErrorIs(t, err, ErrStale)
	assert.ErrorIs(t, err, ErrSourceUnavailable, "cause is kept")
	require.Len(t, rows, 1)
	assert.Equal(t, "Snapshot Co", rows[0].CustomerName)
}

func TestLoader_FailsWithoutFallback(t *testing.T) {
	fetcher := &mocks.MockFetcher{
		ValuesFunc: func(context.Context) ([][]any, error) {
			return nil, errors.Join(ErrSourceUnavailable, errors.New("dial tcp: refused"))
		},
	}
	snapshots := &mocks.MockSnapshotStore{
		LatestSnapshotFunc: func(context.Context) ([]survey.Row, error) {
			return nil, errors.New("no snapshot")
		},
	}
	l := NewLoader(fetcher, zaptest.NewLogger(t), WithSnapshots(snapshots))

	_, err := l.Load(context.Background())

	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestLoader_CloseWaitsForInFlightLoad(t *testing.T) {
	release := make(chan struct{})
	fetcher := &mocks.MockFetcher{
		ValuesFunc: func(context.Context) ([][]any, error) {
			<-release
			return sheetValues(), nil
		},
	}
	var saved atomic.Bool
	snapshots := &mocks.MockSnapshotStore{
		SaveSnapshotFunc: func(context.Context, []survey.Row) error {
			saved.Store(true)
			return nil
		},
	}
	l := NewLoader(fetcher, zaptest.NewLogger(t), WithSnapshots(snapshots))

	ctx, cancel := context.WithCancel(context.Background())
	loadErr := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx)
		loadErr <- err
	}()
	require.Eventually(t, func() bool { return fetcher.Calls() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-loadErr, context.Canceled)

	closed := make(chan struct{})
	go func() {
		l.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a load was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-closed
	assert.True(t, saved.Load(), "snapshot saved before Close returned")
}

func TestLoader_RejectsLoadsAfterClose(t *testing.T) {
	fetcher := staticFetcher(sheetValues())
	l := NewLoader(fetcher, zaptest.NewLogger(t))
	l.Close()

	_, err := l.Load(context.Background())

	assert.ErrorIs(t, err, ErrLoaderClosed)
	assert.Zero(t, fetcher.Calls())
}

func TestLoader_LoadTimeoutBoundsSharedLoad(t *testing.T) {
	fetcher := &mocks.MockFetcher{
		ValuesFunc: func(ctx context.Context) ([][]any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	l := NewLoader(fetcher, zaptest.NewLogger(t), WithLoadTimeout(20*time.Millisecond))

	_, err := l.Load(context.Background())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoader_ReturnsCopies(t *testing.T) {
	l := NewLoader(staticFetcher(sheetValues()), zaptest.NewLogger(t))

	first, err := l.Load(context.Background())
	require.NoError(t, err)
	first[0].CustomerName = "mutated"

	second, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ساكو", second[0].CustomerName)
}

func TestAddTTLJitter(t *testing.T) {
	assert.Equal(t, 30*time.Second, addTTLJitter(30*time.Second))
	for i := 0; i < 100; i++ {
		got := addTTLJitter(10 * time.Minute)
		assert.GreaterOrEqual(t, got, 10*time.Minute-15*time.Second)
		assert.LessOrEqual(t, got, 10*time.Minute+15*time.Second)
	}
}
