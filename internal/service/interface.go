package service

import "github.com/godilite/survey-table/internal/survey"

// RowSource yields the rows currently visible in a widget, filters applied.
type RowSource interface {
	FilteredRows(widgetID string) ([]survey.Row, error)
}
