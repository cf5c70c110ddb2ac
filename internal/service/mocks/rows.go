package mocks

import (
	"errors"

	"github.com/godilite/survey-table/internal/survey"
)

// MockRowSource is a mock implementation of the RowSource interface
// for testing the service layer.
type MockRowSource struct {
	FilteredRowsFunc func(widgetID string) ([]survey.Row, error)
}

// FilteredRows implements the RowSource interface
func (m *MockRowSource) FilteredRows(widgetID string) ([]survey.Row, error) {
	if m.FilteredRowsFunc != nil {
		return m.FilteredRowsFunc(widgetID)
	}
	return nil, errors.New("FilteredRowsFunc not implemented")
}
