package table

import (
	"errors"
	"fmt"

	"github.com/godilite/survey-table/internal/survey"
)

// Kind selects how a column's values are compared when sorting.
type Kind int

const (
	KindText Kind = iota
	KindDate
	KindNumeric
)

// Column describes one displayed field and the interactions it supports.
type Column struct {
	Key        string
	Label      string
	Kind       Kind
	Sortable   bool
	Filterable bool
}

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrNotSortable   = errors.New("column is not sortable")
	ErrNotFilterable = errors.New("column is not filterable")
)

// Columns is the display order of the survey table.
var Columns = []Column{
	{Key: survey.FieldCustomerName, Label: "Customer Name", Kind: KindText, Sortable: true},
	{Key: survey.FieldAccountManager, Label: "Account Manager", Kind: KindText, Filterable: true},
	{Key: survey.FieldServiceType, Label: "Service Type", Kind: KindText},
	{Key: survey.FieldCompletionDate, Label: "Completion Date", Kind: KindDate, Sortable: true},
	{Key: survey.FieldNPSScore, Label: "NPS Score", Kind: KindNumeric, Sortable: true},
	{Key: survey.FieldSatisfactionScore, Label: "Satisfaction", Kind: KindNumeric, Sortable: true},
}

// LookupColumn finds a column by key.
func LookupColumn(key string) (Column, bool) {
	for _, c := range Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// SortableColumn returns the column for key, or an error when it cannot be sorted.
func SortableColumn(key string) (Column, error) {
	c, ok := LookupColumn(key)
	if !ok {
		return Column{}, fmt.Errorf("%w: %q", ErrUnknownColumn, key)
	}
	if !c.Sortable {
		return Column{}, fmt.Errorf("%w: %q", ErrNotSortable, key)
	}
	return c, nil
}

// FilterableColumn returns the column for key, or an error when it cannot be filtered.
func FilterableColumn(key string) (Column, error) {
	c, ok := LookupColumn(key)
	if !ok {
		return Column{}, fmt.Errorf("%w: %q", ErrUnknownColumn, key)
	}
	if !c.Filterable {
		return Column{}, fmt.Errorf("%w: %q", ErrNotFilterable, key)
	}
	return c, nil
}
