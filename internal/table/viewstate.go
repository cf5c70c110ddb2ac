package table

import (
	"encoding/json"
	"sort"
)

// Direction is the sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// Word returns "ascending" or "descending".
func (d Direction) Word() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// ViewState is the user-adjustable, persisted view configuration.
type ViewState struct {
	SortColumn    string              `json:"sortColumn"`
	SortDirection Direction           `json:"sortDirection"`
	Filters       map[string][]string `json:"filters"`
	CurrentPage   int                 `json:"currentPage"`
}

// DefaultViewState returns an unsorted, unfiltered state on page 1.
func DefaultViewState() ViewState {
	return ViewState{
		SortDirection: Ascending,
		Filters:       map[string][]string{},
		CurrentPage:   1,
	}
}

// Clone returns a deep copy so callers cannot mutate the store's filters.
func (s ViewState) Clone() ViewState {
	out := s
	out.Filters = make(map[string][]string, len(s.Filters))
	for k, v := range s.Filters {
		out.Filters[k] = append([]string(nil), v...)
	}
	return out
}

// ActiveFilterCount is the total number of selected values across all filters.
func (s ViewState) ActiveFilterCount() int {
	n := 0
	for _, v := range s.Filters {
		n += len(v)
	}
	return n
}

// HasActiveFilters reports whether any column restricts rows.
func (s ViewState) HasActiveFilters() bool {
	return s.ActiveFilterCount() > 0
}

// FilterSet returns the selected values of column as a set.
func (s ViewState) FilterSet(column string) map[string]struct{} {
	set := make(map[string]struct{}, len(s.Filters[column]))
	for _, v := range s.Filters[column] {
		set[v] = struct{}{}
	}
	return set
}

// Encode serializes the state for durable storage.
func (s ViewState) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeViewState parses persisted state and repairs anything that does not
// fit the current columns. Malformed input returns an error; callers fall back
// to DefaultViewState.
func DecodeViewState(raw string) (ViewState, error) {
	var s ViewState
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return ViewState{}, err
	}
	return s.sanitized(), nil
}

func (s ViewState) sanitized() ViewState {
	out := DefaultViewState()

	if _, err := SortableColumn(s.SortColumn); err == nil {
		out.SortColumn = s.SortColumn
	}
	if s.SortDirection == Descending {
		out.SortDirection = Descending
	}
	if s.CurrentPage > 1 {
		out.CurrentPage = s.CurrentPage
	}

	for col, values := range s.Filters {
		if _, err := FilterableColumn(col); err != nil {
			continue
		}
		if cleaned := uniqueValues(values); len(cleaned) > 0 {
			out.Filters[col] = cleaned
		}
	}
	return out
}

// uniqueValues drops duplicates and returns the values in a stable order.
func uniqueValues(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
