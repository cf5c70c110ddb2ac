package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/godilite/survey-table/internal/source"
	"github.com/godilite/survey-table/internal/survey"
	"github.com/godilite/survey-table/internal/table"
)

// Loader fetches the current survey rows from the data source. An error
// wrapping source.ErrStale comes with usable rows from the last saved
// snapshot.
type Loader interface {
	Load(ctx context.Context) ([]survey.Row, error)
}

// Frame is one rendering of a widget together with the side effects the
// client applies after swapping in the markup.
type Frame struct {
	HTML         string `json:"html"`
	Announcement string `json:"announcement,omitempty"`
	Focus        string `json:"focus,omitempty"`
	TotalPages   int    `json:"totalPages"`
	CurrentPage  int    `json:"currentPage"`
	Visible      int    `json:"visible"`
	Total        int    `json:"total"`
	Stale        bool   `json:"stale,omitempty"`
}

// Widget is the render/event layer of one survey table. The store is the
// single source of truth; markup is a one-way projection of it and events
// come back only through HandleEvent.
type Widget struct {
	mu     sync.Mutex
	id     string
	opts   Options
	store  *table.Store
	loader Loader
	logger *zap.Logger

	// Transient UI state, never persisted.
	openFilter string
	pending    map[string]struct{}
	loadErr    error
	stale      bool
}

type outcome struct {
	announcement string
	focus        string
	mutated      bool
}

// New creates a widget and restores its persisted view state from storage.
// A nil storage disables persistence.
func New(ctx context.Context, id string, loader Loader, storage table.Storage, logger *zap.Logger, opts ...Option) *Widget {
	if loader == nil {
		panic("nil Loader provided to widget.New")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	logger = logger.Named("widget").With(zap.String("widget", id))

	store := table.NewStore(id, storage, logger,
		table.WithPageSize(options.PageSize),
		table.WithPagination(options.EnablePagination),
		table.WithPersistence(options.PersistState),
	)
	if store.Restore(ctx) {
		logger.Debug("restored view state")
	}

	return &Widget{
		id:     id,
		opts:   options,
		store:  store,
		loader: loader,
		logger: logger,
	}
}

func (w *Widget) ID() string {
	return w.id
}

// Render returns the current frame without changing any state.
func (w *Widget) Render() (Frame, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frame(outcome{})
}

// Refresh reloads rows from the loader. Load failures are rendered as an
// error state with a retry control; previously loaded rows stay visible.
// Only context cancellation is returned as an error.
func (w *Widget) Refresh(ctx context.Context) (Frame, error) {
	rows, err := w.loader.Load(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Frame{}, ctxErr
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.closeFilter()
	stale := errors.Is(err, source.ErrStale)
	if err != nil && !stale {
		w.loadErr = err
		w.logger.Warn("failed to load survey data", zap.Error(err))
		return w.frame(outcome{announcement: "Failed to load data"})
	}

	w.loadErr = nil
	w.stale = stale
	w.store.SetData(rows)
	w.persist(ctx)
	if stale {
		w.logger.Warn("showing saved survey data", zap.Int("rows", len(rows)), zap.Error(err))
		return w.frame(outcome{announcement: fmt.Sprintf("Showing saved data: %d records", len(rows))})
	}
	w.logger.Debug("survey data loaded", zap.Int("rows", len(rows)))
	return w.frame(outcome{announcement: fmt.Sprintf("Data refreshed: %d records", len(rows))})
}

// HandleEvent applies a user gesture and returns the resulting frame.
// Mutations run update, derive, render, persist and announce in that order.
func (w *Widget) HandleEvent(ctx context.Context, ev Event) (Frame, error) {
	if err := ev.Validate(); err != nil {
		return Frame{}, err
	}
	if ev.Type == EventClick && (ev.Target.Kind == TargetRefresh || ev.Target.Kind == TargetRetry) {
		return w.Refresh(ctx)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	out, err := w.apply(ev)
	if err != nil {
		return Frame{}, err
	}
	frame, err := w.frame(out)
	if err != nil {
		return Frame{}, err
	}
	if out.mutated {
		w.persist(ctx)
	}
	return frame, nil
}

// FilteredRows returns a copy of the rows that pass the active filters, in
// display order.
func (w *Widget) FilteredRows() []survey.Row {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]survey.Row(nil), w.store.View().FilteredRows...)
}

// State returns a copy of the current view state.
func (w *Widget) State() table.ViewState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.State()
}

func (w *Widget) apply(ev Event) (outcome, error) {
	if ev.Type == EventKeydown {
		return w.applyKey(ev)
	}

	t := ev.Target
	if !t.Kind.insideFilterControl() {
		w.closeFilter()
	}

	switch t.Kind {
	case TargetSortHeader:
		return w.sortBy(t.Column)
	case TargetFilterTrigger:
		return w.toggleFilterControl(t.Column)
	case TargetFilterOption:
		w.togglePending(t.Column, t.Value)
		return outcome{}, nil
	case TargetFilterApply:
		return w.applyFilter(t.Column)
	case TargetFilterClear:
		return w.clearFilter(t.Column)
	case TargetFilterClose, TargetFilterCancel:
		return outcome{focus: w.closeFilter()}, nil
	case TargetPage:
		if !w.store.SetPage(t.Page) {
			return outcome{}, nil
		}
		return outcome{announcement: fmt.Sprintf("Page %d loaded", t.Page), mutated: true}, nil
	case TargetClearAll:
		w.store.ClearAllFilters()
		return outcome{announcement: "All filters cleared", mutated: true}, nil
	case TargetOutside:
		return outcome{}, nil
	}
	return outcome{}, fmt.Errorf("%w: unsupported target %q", ErrInvalidEvent, t.Kind)
}

func (w *Widget) applyKey(ev Event) (outcome, error) {
	switch {
	case isEscapeKey(ev.Key):
		if w.openFilter == "" {
			return outcome{}, nil
		}
		return outcome{focus: w.closeFilter()}, nil
	case isActivationKey(ev.Key):
		switch ev.Target.Kind {
		case TargetSortHeader, TargetFilterTrigger:
			return w.apply(Click(ev.Target))
		}
	}
	return outcome{}, nil
}

func (w *Widget) sortBy(column string) (outcome, error) {
	if !w.opts.EnableSorting {
		return outcome{}, fmt.Errorf("%w: sorting is disabled", ErrInvalidEvent)
	}
	if err := w.store.SetSort(column); err != nil {
		return outcome{}, err
	}
	col, _ := table.LookupColumn(column)
	return outcome{
		announcement: fmt.Sprintf("Table sorted by %s %s", col.Label, w.store.State().SortDirection.Word()),
		focus:        sortID(w.id, column),
		mutated:      true,
	}, nil
}

func (w *Widget) filterColumn(column string) (table.Column, error) {
	if !w.opts.EnableFiltering {
		return table.Column{}, fmt.Errorf("%w: filtering is disabled", ErrInvalidEvent)
	}
	return table.FilterableColumn(column)
}

// toggleFilterControl opens the control for column, seeding the pending
// selection from the active filter, or closes it when it is already open.
// Only one control is open at a time.
func (w *Widget) toggleFilterControl(column string) (outcome, error) {
	if _, err := w.filterColumn(column); err != nil {
		return outcome{}, err
	}
	if w.openFilter == column {
		return outcome{focus: w.closeFilter()}, nil
	}

	w.closeFilter()
	w.openFilter = column
	w.pending = w.store.State().FilterSet(column)

	focus := filterID(w.id, column)
	if len(w.store.DistinctValues(column)) > 0 {
		focus = optionID(w.id, column, 0)
	}
	return outcome{focus: focus}, nil
}

func (w *Widget) togglePending(column, value string) {
	if w.openFilter != column {
		return
	}
	if _, ok := w.pending[value]; ok {
		delete(w.pending, value)
	} else {
		w.pending[value] = struct{}{}
	}
}

func (w *Widget) applyFilter(column string) (outcome, error) {
	col, err := w.filterColumn(column)
	if err != nil {
		return outcome{}, err
	}
	if w.openFilter != column {
		return outcome{}, nil
	}

	values := pendingValues(w.pending)
	if err := w.store.SetFilter(column, values); err != nil {
		return outcome{}, err
	}
	focus := w.closeFilter()

	announcement := fmt.Sprintf("Filter cleared for %s", col.Label)
	if n := len(values); n > 0 {
		announcement = fmt.Sprintf("Filter applied: %d %s %s selected", n, col.Label, plural(n, "option"))
	}
	return outcome{announcement: announcement, focus: focus, mutated: true}, nil
}

func (w *Widget) clearFilter(column string) (outcome, error) {
	col, err := w.filterColumn(column)
	if err != nil {
		return outcome{}, err
	}
	if err := w.store.ClearFilter(column); err != nil {
		return outcome{}, err
	}
	focus := filterID(w.id, column)
	if w.openFilter == column {
		focus = w.closeFilter()
	}
	return outcome{
		announcement: fmt.Sprintf("Filter cleared for %s", col.Label),
		focus:        focus,
		mutated:      true,
	}, nil
}

// closeFilter discards the pending selection and returns the id of the
// trigger that owned the closed control, or "" when none was open.
func (w *Widget) closeFilter() string {
	if w.openFilter == "" {
		return ""
	}
	trigger := filterID(w.id, w.openFilter)
	w.openFilter = ""
	w.pending = nil
	return trigger
}

func (w *Widget) persist(ctx context.Context) {
	if err := w.store.Persist(ctx); err != nil {
		w.logger.Warn("failed to persist view state", zap.Error(err))
	}
}

func (w *Widget) frame(out outcome) (Frame, error) {
	html, err := w.render(out.announcement)
	if err != nil {
		return Frame{}, err
	}
	view := w.store.View()
	return Frame{
		HTML:         html,
		Announcement: out.announcement,
		Focus:        out.focus,
		TotalPages:   view.TotalPages,
		CurrentPage:  view.CurrentPage,
		Visible:      len(view.FilteredRows),
		Total:        len(w.store.Rows()),
		Stale:        w.stale,
	}, nil
}
