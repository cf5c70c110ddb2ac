package table

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/godilite/survey-table/internal/survey"
)

type Options struct {
	PageSize     int
	Paginate     bool
	PersistState bool
}

type Option func(*Options)

func WithPageSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.PageSize = size
		}
	}
}

func WithPagination(enabled bool) Option {
	return func(o *Options) { o.Paginate = enabled }
}

func WithPersistence(enabled bool) Option {
	return func(o *Options) { o.PersistState = enabled }
}

// Store owns the raw rows and the ViewState of one table and keeps the
// DerivedView in sync with them. It is not safe for concurrent use; the
// owning widget serializes access.
type Store struct {
	containerID string
	storage     Storage
	logger      *zap.Logger
	opts        Options

	rows   []survey.Row
	loaded bool
	state  ViewState
	view   DerivedView
}

// NewStore creates a store with default state. Call Restore to load persisted state.
func NewStore(containerID string, storage Storage, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	options := Options{
		PageSize:     DefaultPageSize,
		Paginate:     true,
		PersistState: true,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if storage == nil {
		options.PersistState = false
	}

	s := &Store{
		containerID: containerID,
		storage:     storage,
		logger:      logger,
		opts:        options,
		state:       DefaultViewState(),
	}
	s.recompute()
	return s
}

// SetData replaces the raw rows. Filters, sort and page are kept; the page is
// clamped if the new data has fewer pages.
func (s *Store) SetData(rows []survey.Row) {
	s.rows = append([]survey.Row(nil), rows...)
	s.loaded = true
	s.recompute()
}

// SetFilter replaces the allowed values of column and returns to page 1.
// An empty values list removes the restriction.
func (s *Store) SetFilter(column string, values []string) error {
	if _, err := FilterableColumn(column); err != nil {
		return err
	}
	if cleaned := uniqueValues(values); len(cleaned) > 0 {
		s.state.Filters[column] = cleaned
	} else {
		delete(s.state.Filters, column)
	}
	s.state.CurrentPage = 1
	s.recompute()
	return nil
}

// ClearFilter removes the restriction on column and returns to page 1.
func (s *Store) ClearFilter(column string) error {
	return s.SetFilter(column, nil)
}

// ClearAllFilters removes every restriction and returns to page 1.
func (s *Store) ClearAllFilters() {
	s.state.Filters = map[string][]string{}
	s.state.CurrentPage = 1
	s.recompute()
}

// SetSort sorts by column ascending, or flips the direction when column is
// already the sort column.
func (s *Store) SetSort(column string) error {
	if _, err := SortableColumn(column); err != nil {
		return err
	}
	if s.state.SortColumn == column {
		s.state.SortDirection = s.state.SortDirection.Toggle()
	} else {
		s.state.SortColumn = column
		s.state.SortDirection = Ascending
	}
	s.recompute()
	return nil
}

// SetPage moves to page. It reports false, changing nothing, when page is the
// current page or outside [1, TotalPages].
func (s *Store) SetPage(page int) bool {
	if page == s.view.CurrentPage || page < 1 || page > s.view.TotalPages {
		return false
	}
	s.state.CurrentPage = page
	s.recompute()
	return true
}

// Persist writes the ViewState, never the rows, to storage.
func (s *Store) Persist(ctx context.Context) error {
	if !s.opts.PersistState {
		return nil
	}
	encoded, err := s.state.Encode()
	if err != nil {
		return fmt.Errorf("encode view state: %w", err)
	}
	if err := s.storage.Set(ctx, StateKey(s.containerID), encoded); err != nil {
		return fmt.Errorf("persist view state: %w", err)
	}
	return nil
}

// Restore loads persisted ViewState. Missing, unreadable or corrupt state
// leaves the defaults in place; it reports whether state was applied.
func (s *Store) Restore(ctx context.Context) bool {
	if !s.opts.PersistState {
		return false
	}

	raw, found, err := s.storage.Get(ctx, StateKey(s.containerID))
	if err != nil {
		s.logger.Debug("view state unavailable, using defaults",
			zap.String("container", s.containerID), zap.Error(err))
		return false
	}
	if !found || raw == "" {
		return false
	}

	state, err := DecodeViewState(raw)
	if err != nil {
		s.logger.Debug("discarding corrupt view state",
			zap.String("container", s.containerID), zap.Error(err))
		return false
	}

	s.state = state
	s.recompute()
	return true
}

// State returns a copy of the current ViewState.
func (s *Store) State() ViewState {
	return s.state.Clone()
}

// View returns the current DerivedView.
func (s *Store) View() DerivedView {
	return s.view
}

// Rows returns the raw rows.
func (s *Store) Rows() []survey.Row {
	return s.rows
}

// Loaded reports whether SetData has been called at least once.
func (s *Store) Loaded() bool {
	return s.loaded
}

// DistinctValues lists the non-empty values of column across the raw,
// unfiltered rows in collation order.
func (s *Store) DistinctValues(column string) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, r := range s.rows {
		v := r.Value(column)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}

	c := newTextCollator()
	sort.SliceStable(values, func(i, j int) bool {
		return c.CompareString(values[i], values[j]) < 0
	})
	return values
}

func (s *Store) recompute() {
	pageSize := s.opts.PageSize
	if !s.opts.Paginate {
		pageSize = 0
	}
	s.view = Derive(s.rows, s.state, pageSize)
	// A restored page is kept until the first data set arrives.
	if s.loaded {
		s.state.CurrentPage = s.view.CurrentPage
	}
}
