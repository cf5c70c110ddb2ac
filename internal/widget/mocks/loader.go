package mocks

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/godilite/survey-table/internal/survey"
)

// MockLoader is a mock implementation of the widget Loader interface.
// It uses function-based mocking for flexibility.
type MockLoader struct {
	LoadFunc func(ctx context.Context) ([]survey.Row, error)
	calls    atomic.Int32
}

// Load implements the Loader interface
func (m *MockLoader) Load(ctx context.Context) ([]survey.Row, error) {
	m.calls.Add(1)
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return nil, errors.New("LoadFunc not implemented")
}

// Calls reports how many times Load was invoked.
func (m *MockLoader) Calls() int {
	return int(m.calls.Load())
}

// Rows returns a loader that always yields rows.
func Rows(rows []survey.Row) *MockLoader {
	return &MockLoader{
		LoadFunc: func(context.Context) ([]survey.Row, error) {
			return rows, nil
		},
	}
}
