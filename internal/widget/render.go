package widget

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"

	"github.com/godilite/survey-table/internal/survey"
	"github.com/godilite/survey-table/internal/table"
	"github.com/godilite/survey-table/internal/textnorm"
)

// neighbourPages is how many page buttons are shown on each side of the current page.
const neighbourPages = 2

var pageTemplate = template.Must(template.New("widget").Funcs(template.FuncMap{
	"missing": func() string { return missingValue },
}).Parse(widgetTemplates))

type widgetView struct {
	ID                 string
	Title              string
	Total              int
	Visible            int
	ActiveFilters      int
	ActiveFiltersLabel string
	HasFilters         bool
	Loaded             bool
	Failed             bool
	Stale              bool
	OpenFilter         string
	Columns            []columnView
	Rows               []rowView
	Pagination         *paginationView
	Announcement       string
}

type columnView struct {
	Key          string
	Label        string
	Sortable     bool
	Sorted       bool
	SortID       string
	AriaSort     string
	SortIcon     string
	Filterable   bool
	FilterID     string
	FilterActive bool
	Open         bool
	Options      []optionView
}

type optionView struct {
	ID       string
	Value    string
	Text     string
	Selected bool
}

type rowView struct {
	CustomerName   string
	AccountManager string
	ServiceType    string
	Date           string
	NPS            string
	NPSClass       string
	Satisfaction   string
}

type paginationView struct {
	First   int
	Last    int
	Total   int
	Prev    int
	Next    int
	HasPrev bool
	HasNext bool
	Items   []pageItem
}

type pageItem struct {
	Page     int
	Active   bool
	Ellipsis bool
}

func sortID(widgetID, column string) string {
	return fmt.Sprintf("%s-sort-%s", widgetID, column)
}

func filterID(widgetID, column string) string {
	return fmt.Sprintf("%s-filter-%s", widgetID, column)
}

func optionID(widgetID, column string, index int) string {
	return fmt.Sprintf("%s-filter-%s-option-%d", widgetID, column, index)
}

// render projects the current store state into markup. It reads state only.
func (w *Widget) render(announcement string) (string, error) {
	state := w.store.State()
	view := w.store.View()
	active := state.ActiveFilterCount()

	data := widgetView{
		ID:                 w.id,
		Title:              w.opts.Title,
		Total:              len(w.store.Rows()),
		Visible:            len(view.FilteredRows),
		ActiveFilters:      active,
		ActiveFiltersLabel: plural(active, "Active Filter"),
		HasFilters:         state.HasActiveFilters(),
		Loaded:             w.store.Loaded(),
		Failed:             w.loadErr != nil,
		Stale:              w.stale,
		OpenFilter:         w.openFilter,
		Columns:            w.columnViews(state),
		Rows:               rowViews(view.PageRows),
		Pagination:         w.paginationView(view),
		Announcement:       announcement,
	}

	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "widget", data); err != nil {
		return "", fmt.Errorf("render widget %s: %w", w.id, err)
	}
	return buf.String(), nil
}

func (w *Widget) columnViews(state table.ViewState) []columnView {
	out := make([]columnView, 0, len(table.Columns))
	for _, col := range table.Columns {
		cv := columnView{
			Key:        col.Key,
			Label:      col.Label,
			Sortable:   col.Sortable && w.opts.EnableSorting,
			Filterable: col.Filterable && w.opts.EnableFiltering,
		}

		if cv.Sortable {
			cv.SortID = sortID(w.id, col.Key)
			cv.AriaSort = "none"
			cv.SortIcon = "sort"
			if state.SortColumn == col.Key {
				cv.Sorted = true
				cv.AriaSort = state.SortDirection.Word()
				cv.SortIcon = "sort-" + string(state.SortDirection)
			}
		}

		if cv.Filterable {
			cv.FilterID = filterID(w.id, col.Key)
			cv.FilterActive = len(state.Filters[col.Key]) > 0
			if w.openFilter == col.Key {
				cv.Open = true
				cv.Options = w.optionViews(col.Key)
			}
		}
		out = append(out, cv)
	}
	return out
}

// optionViews lists every distinct raw value of column, flagged by the pending
// selection of the open filter control.
func (w *Widget) optionViews(column string) []optionView {
	values := w.store.DistinctValues(column)
	out := make([]optionView, len(values))
	for i, v := range values {
		_, selected := w.pending[v]
		out[i] = optionView{
			ID:       optionID(w.id, column, i),
			Value:    v,
			Text:     textnorm.Normalize(v),
			Selected: selected,
		}
	}
	return out
}

func rowViews(rows []survey.Row) []rowView {
	out := make([]rowView, len(rows))
	for i, r := range rows {
		rv := rowView{
			CustomerName:   textnorm.Normalize(r.CustomerName),
			AccountManager: textnorm.Normalize(r.AccountManager),
			ServiceType:    textnorm.Normalize(r.ServiceType),
			Date:           formatDate(r.CompletionDate),
			NPS:            scoreText(r.NPSScore),
			Satisfaction:   scoreText(r.SatisfactionScore),
		}
		if r.NPSScore != nil {
			rv.NPSClass = npsClass(*r.NPSScore)
		}
		out[i] = rv
	}
	return out
}

func (w *Widget) paginationView(view table.DerivedView) *paginationView {
	if !w.opts.EnablePagination || view.TotalPages <= 1 {
		return nil
	}
	first, last := view.PageBounds()
	return &paginationView{
		First:   first,
		Last:    last,
		Total:   len(view.FilteredRows),
		Prev:    view.CurrentPage - 1,
		Next:    view.CurrentPage + 1,
		HasPrev: view.CurrentPage > 1,
		HasNext: view.CurrentPage < view.TotalPages,
		Items:   pageWindow(view.CurrentPage, view.TotalPages),
	}
}

// pageWindow lists the page buttons around current, always including the
// first and last page and eliding gaps with an ellipsis.
func pageWindow(current, total int) []pageItem {
	start := max(1, current-neighbourPages)
	end := min(total, current+neighbourPages)

	var items []pageItem
	if start > 1 {
		items = append(items, pageItem{Page: 1})
		if start > 2 {
			items = append(items, pageItem{Ellipsis: true})
		}
	}
	for p := start; p <= end; p++ {
		items = append(items, pageItem{Page: p, Active: p == current})
	}
	if end < total {
		if end < total-1 {
			items = append(items, pageItem{Ellipsis: true})
		}
		items = append(items, pageItem{Page: total})
	}
	return items
}

func pendingValues(pending map[string]struct{}) []string {
	out := make([]string, 0, len(pending))
	for v := range pending {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
