package table

import (
	"sort"

	"github.com/godilite/survey-table/internal/survey"
)

// DefaultPageSize is the number of rows per page unless configured otherwise.
const DefaultPageSize = 25

// DerivedView is the filtered, sorted and paginated projection of the rows
// for one ViewState. It is recomputed in full and never persisted.
type DerivedView struct {
	FilteredRows []survey.Row
	PageRows     []survey.Row
	TotalPages   int
	CurrentPage  int
	PageSize     int
}

// PageBounds returns the 1-based index range of PageRows within FilteredRows.
// Both are zero when the page is empty.
func (v DerivedView) PageBounds() (first, last int) {
	if len(v.PageRows) == 0 {
		return 0, 0
	}
	first = (v.CurrentPage-1)*v.PageSize + 1
	if v.PageSize <= 0 {
		first = 1
	}
	return first, first + len(v.PageRows) - 1
}

// Derive filters, sorts and paginates rows for state. A pageSize of zero or
// less puts every filtered row on a single page. The input slice is not modified.
func Derive(rows []survey.Row, state ViewState, pageSize int) DerivedView {
	filtered := Filter(rows, state.Filters)

	if state.SortColumn != "" {
		if col, err := SortableColumn(state.SortColumn); err == nil {
			Sort(filtered, col, state.SortDirection)
		}
	}

	total := TotalPages(len(filtered), pageSize)
	page := clampPage(state.CurrentPage, total)

	return DerivedView{
		FilteredRows: filtered,
		PageRows:     Paginate(filtered, page, pageSize),
		TotalPages:   total,
		CurrentPage:  page,
		PageSize:     pageSize,
	}
}

// Filter keeps rows whose value is a member of every non-empty filter set.
// It always returns a new slice.
func Filter(rows []survey.Row, filters map[string][]string) []survey.Row {
	active := make(map[string]map[string]struct{}, len(filters))
	for col, values := range filters {
		if len(values) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[v] = struct{}{}
		}
		active[col] = set
	}

	out := make([]survey.Row, 0, len(rows))
	for _, r := range rows {
		if matches(r, active) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r survey.Row, active map[string]map[string]struct{}) bool {
	for col, set := range active {
		if _, ok := set[r.Value(col)]; !ok {
			return false
		}
	}
	return true
}

// Sort orders rows in place by col. Equal rows keep their input order.
func Sort(rows []survey.Row, col Column, dir Direction) {
	cmp := comparatorFor(col)
	sort.SliceStable(rows, func(i, j int) bool {
		if dir == Descending {
			return cmp(rows[j], rows[i]) < 0
		}
		return cmp(rows[i], rows[j]) < 0
	})
}

// TotalPages is ceil(n / pageSize), never less than 1.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 || n == 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// Paginate returns the slice of rows shown on page.
func Paginate(rows []survey.Row, page, pageSize int) []survey.Row {
	if pageSize <= 0 {
		return rows
	}
	start := (page - 1) * pageSize
	if start < 0 || start >= len(rows) {
		return []survey.Row{}
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func clampPage(page, total int) int {
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}
