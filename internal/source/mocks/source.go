package mocks

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/godilite/survey-table/internal/survey"
)

// MockFetcher is a mock implementation of the ValueFetcher interface.
type MockFetcher struct {
	ValuesFunc func(ctx context.Context) ([][]any, error)
	calls      atomic.Int32
}

// Values implements the ValueFetcher interface
func (m *MockFetcher) Values(ctx context.Context) ([][]any, error) {
	m.calls.Add(1)
	if m.ValuesFunc != nil {
		return m.ValuesFunc(ctx)
	}
	return nil, errors.New("ValuesFunc not implemented")
}

// Calls reports how many times Values was invoked.
func (m *MockFetcher) Calls() int {
	return int(m.calls.Load())
}

// MockSnapshotStore is a mock implementation of the SnapshotStore interface.
type MockSnapshotStore struct {
	SaveSnapshotFunc   func(ctx context.Context, rows []survey.Row) error
	LatestSnapshotFunc func(ctx context.Context) ([]survey.Row, error)
}

// SaveSnapshot implements the SnapshotStore interface
func (m *MockSnapshotStore) SaveSnapshot(ctx context.Context, rows []survey.Row) error {
	if m.SaveSnapshotFunc != nil {
		return m.SaveSnapshotFunc(ctx, rows)
	}
	return nil
}

// LatestSnapshot implements the SnapshotStore interface
func (m *MockSnapshotStore) LatestSnapshot(ctx context.Context) ([]survey.Row, error) {
	if m.LatestSnapshotFunc != nil {
		return m.LatestSnapshotFunc(ctx)
	}
	return nil, errors.New("LatestSnapshotFunc not implemented")
}
