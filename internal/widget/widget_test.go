package widget

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/godilite/survey-table/internal/source"
	"github.com/godilite/survey-table/internal/survey"
	"github.com/godilite/survey-table/internal/table"
	"github.com/godilite/survey-table/internal/widget/mocks"
)

var managers = []string{"Ahmed Saleem", "Ibrahim Fadaly", "Mai Hassan"}

func surveyRows(n int) []survey.Row {
	rows := make([]survey.Row, n)
	for i := range rows {
		rows[i] = survey.Row{
			ID:                fmt.Sprintf("r-%d", i),
			CustomerName:      fmt.Sprintf("Customer %02d", i),
			AccountManager:    managers[i%len(managers)],
			ServiceType:       "Last Mile Only",
			CompletionDate:    "2025-07-10T08:58:25",
			NPSScore:          survey.Score(i % 11),
			SatisfactionScore: survey.Score(i%5 + 1),
		}
	}
	return rows
}

func newLoadedWidget(t *testing.T, rows []survey.Row, opts ...Option) (*Widget, *table.MemoryStorage) {
	t.Helper()
	storage := table.NewMemoryStorage()
	w := New(context.Background(), "survey", mocks.Rows(rows), storage, zaptest.NewLogger(t), opts...)
	_, err := w.Refresh(context.Background())
	require.NoError(t, err)
	return w, storage
}

func click(t *testing.T, w *Widget, target Target) Frame {
	t.Helper()
	frame, err := w.HandleEvent(context.Background(), Click(target))
	require.NoError(t, err)
	return frame
}

func TestWidget_RendersLoadingBeforeData(t *testing.T) {
	w := New(context.Background(), "survey", mocks.Rows(nil), nil, nil)

	frame, err := w.Render()

	require.NoError(t, err)
	assert.Contains(t, frame.HTML, "Loading survey data")
	assert.Equal(t, 1, frame.TotalPages)
}

func TestWidget_RefreshLoadsRows(t *testing.T) {
	w, _ := newLoadedWidget(t, surveyRows(30))

	frame, err := w.Render()
	require.NoError(t, err)

	assert.Equal(t, 30, frame.Total)
	assert.Equal(t, 30, frame.Visible)
	assert.Equal(t, 2, frame.TotalPages)
	assert.Contains(t, frame.HTML, "30 Total Records")
	assert.Contains(t, frame.HTML, "Showing 1-25 of 30 records")
	assert.Contains(t, frame.HTML, "Customer 24")
	assert.NotContains(t, frame.HTML, "Customer 25")
}

func TestWidget_RefreshAnnouncesRecordCount(t *testing.T) {
	w := New(context.Background(), "survey", mocks.Rows(surveyRows(3)), nil, nil)

	frame, err := w.HandleEvent(context.Background(), Click(Target{Kind: TargetRefresh}))

	require.NoError(t, err)
	assert.Equal(t, "Data refreshed: 3 records", frame.Announcement)
	assert.Contains(t, frame.HTML, "Data refreshed: 3 records")
}

func TestWidget_LoadFailureRendersErrorStateWithRetry(t *testing.T) {
	attempts := 0
	loader := &mocks.MockLoader{
		LoadFunc: func(context.Context) ([]survey.Row, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("sheets unavailable")
			}
			return surveyRows(5), nil
		},
	}
	w := New(context.Background(), "survey", loader, nil, zaptest.NewLogger(t))

	frame, err := w.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Failed to load data", frame.Announcement)
	assert.Contains(t, frame.HTML, "Unable to load data")
	assert.Contains(t, frame.HTML, `data-kind="retry"`)
	assert.NotContains(t, frame.HTML, "sheets unavailable")

	frame = click(t, w, Target{Kind: TargetRetry})

	assert.Equal(t, 5, frame.Total)
	assert.NotContains(t, frame.HTML, "Unable to load data")
	assert.Equal(t, 2, loader.Calls())
}

func TestWidget_LoadFailureKeepsPreviousRows(t *testing.T) {
	fail := false
	loader := &mocks.MockLoader{
		LoadFunc: func(context.Context) ([]survey.Row, error) {
			if fail {
				return nil, errors.New("timeout")
			}
			return surveyRows(4), nil
		},
	}
	w := New(context.Background(), "survey", loader, nil, zaptest.NewLogger(t))
	_, err := w.Refresh(context.Background())
	require.NoError(t, err)

	fail = true
	frame, err := w.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, frame.Total)
	assert.Contains(t, frame.HTML, "table-alert")
	assert.Contains(t, frame.HTML, "Customer 03")
}

func TestWidget_SnapshotRowsAreMarkedStale(t *testing.T) {
	stale := true
	loader := &mocks.MockLoader{
		LoadFunc: func(context.Context) ([]survey.Row, error) {
			if stale {
				return surveyRows(3), fmt.Errorf("%w: sheets down", source.ErrStale)
			}
			return surveyRows(4), nil
		},
	}
	w := New(context.Background(), "survey", loader, nil, zaptest.NewLogger(t))

	frame, err := w.Refresh(context.Background())

	require.NoError(t, err)
	assert.True(t, frame.Stale)
	assert.Equal(t, 3, frame.Total)
	assert.Equal(t, "Showing saved data: 3 records", frame.Announcement)
	assert.Contains(t, frame.HTML, "Showing the last saved records")
	assert.Contains(t, frame.HTML, `data-kind="retry"`)
	assert.NotContains(t, frame.HTML, "Unable to load data")

	stale = false
	frame = click(t, w, Target{Kind: TargetRetry})

	assert.False(t, frame.Stale)
	assert.Equal(t, 4, frame.Total)
	assert.NotContains(t, frame.HTML, "Showing the last saved records")
}

func TestWidget_RefreshReturnsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loader := &mocks.MockLoader{
		LoadFunc: func(ctx context.Context) ([]survey.Row, error) {
			return nil, ctx.Err()
		},
	}
	w := New(context.Background(), "survey", loader, nil, nil)

	_, err := w.Refresh(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestWidget_SortHeaderTogglesDirection(t *testing.T) {
	w, _ := newLoadedWidget(t, surveyRows(30))
	target := Target{Kind: TargetSortHeader, Column: survey.FieldNPSScore}

	frame := click(t, w, target)
	assert.Equal(t, "Table sorted by NPS Score ascending", frame.Announcement)
	assert.Equal(t, "survey-sort-npsScore", frame.Focus)
	assert.Contains(t, frame.HTML, `aria-sort="ascending"`)

	frame = click(t, w, target)
	assert.Equal(t, "Table sorted by NPS Score descending", frame.Announcement)
	assert.Contains(t, frame.HTML, `aria-sort="descending"`)

	rows := w.FilteredRows()
	assert.Equal(t, 10, *rows[0].NPSScore)
	assert.Equal(t, 0, *rows[len(rows)-1].NPSScore)
}

func TestWidget_ActivationKeysOnSortHeader(t *testing.T) {
	w, _ := newLoadedWidget(t, surveyRows(5))
	target := Target{Kind: TargetSortHeader, Column: survey.FieldCustomerName}

	frame, err := w.HandleEvent(context.Background(), Keydown("Enter", target))
	require.NoError(t, err)
	assert.Equal(t, "Table sorted by Customer Name ascending", frame.Announcement)

	frame, err = w.HandleEvent(context.Background(), Keydown(" ", target))
	require.NoError(t, err)
	assert.Equal(t, "Table sorted by Customer Name descending", frame.Announcement)

	frame, err = w.HandleEvent(context.Background(), Keydown("a", target))
	require.NoError(t, err)
	assert.Empty(t, frame.Announcement)
	assert.Equal(t, table.Descending, w.State().SortDirection)
}

func TestWidget_FilterApplyFlow(t *testing.T) {
	w, _ := newLoadedWidget(t, surveyRows(30), WithPageSize(5))
	click(t, w, Target{Kind: TargetPage, Page: 3})
	column := survey.FieldAccountManager

	frame := click(t, w, Target{Kind: TargetFilterTrigger, Column: column})
	assert.Contains(t, frame.HTML, "filter-dropdown")
	assert.Contains(t, frame.HTML, `aria-expanded="true"`)
	assert.Equal(t, "survey-filter-accountManager-option-0", frame.Focus)
	for _, m := range managers {
		assert.Contains(t, frame.HTML, fmt.Sprintf(`data-value="%s"`, m))
	}

	frame = click(t, w, Target{Kind: TargetFilterOption, Column: column, Value: "Ahmed Saleem"})
	assert.Empty(t, frame.Announcement)
	assert.False(t, w.State().HasActiveFilters(), "pending selection must not touch state")
	assert.Contains(t, frame.HTML, `aria-selected="true"`)

	frame = click(t, w, Target{Kind: TargetFilterApply, Column: column})

	assert.Equal(t, "Filter applied: 1 Account Manager option selected", frame.Announcement)
	assert.Equal(t, "survey-filter-accountManager", frame.Focus)
	assert.Equal(t, 10, frame.Visible)
	assert.Equal(t, 1, frame.CurrentPage)
	assert.NotContains(t, frame.HTML, "filter-dropdown")
	assert.Contains(t, frame.HTML, "1 Active Filter<")
	assert.Equal(t, []string{"Ahmed Saleem"}, w.State().Filters[column])
}

func TestWidget_FilterApplyPluralAndEmptySelection(t *testing.T) {
	w, _ := newLoadedWidget(t, surveyRows(9))
	column := survey.FieldAccountManager

	click(t, w, Target{Kind: TargetFilterTrigger, Column: column})
	click(t, w, Target{Kind: TargetFilterOption, Column: column, Value: "Ahmed Saleem"})
	click(t, w, Target{Kind: TargetFilterOption, Column: column, Value: "Mai Hassan"})
	frame := click(t, w, Target{Kind: TargetFilterApply, Column: column})
	assert.Equal(t, "Filter applied: 2 Account Manager options selected", frame.Announcement)
	assert.Contains(t, frame.HTML, "2 Active Filters")

	frame = click(t, w, Target{Kind: TargetFilterTrigger, Column: column})
	assert.Contains(t, frame.HTML, `data-value="Mai Hassan" checked`)
	click(t, w, Target{Kind: TargetFilterOption, Column: column, Value: "Ahmed Saleem"})
	click(t, w, Target{Kind: TargetFilterOption, Column: column, Value: "Mai Hassan"})
	frame = click(t, w, Target{Kind: TargetFilterApply, Column: column})

	assert.Equal(t, "Filter cleared for Account Manager", frame.Announcement)
	assert.False(t, w.State().HasActiveFilters())
}

func TestWidget_FilterCancelAndOutsideDiscardPending(t *testing.T) {
	for _, kind := range []TargetKind{TargetFilterCancel, TargetFilterClose, TargetOutside} {
		t.Run(string(kind), func(t *testing.T) {
			w, _ := newLoadedWidget(t, surveyRows(9))
			column := survey.FieldAccountManager

			click(t, w, Target{Kind: TargetFilterTrigger, Column: column})
			click(t, w, Target{Kind: TargetFilterOption, Column: column, Value: "Mai Hassan"})
			frame := click(t, w, Target{Kind: kind, Column: column})

			assert.NotContains(t, frame.HTML, "filter-dropdown")
			assert.Empty(t, frame.Announcement)
			assert.False(t, w.State().HasActiveFilters())

			frame = click(t, w, Target{Kind: TargetFilterTrigger, Column: column})
			assert.NotContains(t, frame.HTML, " checked")
		})
	}
}

func TestWidget_SortClickClosesOpenFilter(t *testing.T) {
	w, _ := newLoadedWidget(t, surveyRows(9))
	click(t, w, Target{Kind: TargetFilterTrigger, Column: survey.FieldAccountManager})
	click(t, w, Target{Kind: TargetFilterOption, Column: survey.FieldAccountManager, Value: "Mai Hassan"})

	frame := click(t, w, Target{Kind: TargetSortHeader, Column: survey.FieldCustomerName})

	assert.NotContains(t, frame.HTML, "filter-dropdown")
	assert.False(t, w.State().HasActiveFilters())
}

func TestWidget_EscapeClosesFilterAndRestoresFocus(t *testing.T) {
	w, _ := newLoadedWidget(t, surveyRows(9))
	column := survey.FieldAccountManager
	click(t, w, Target{Kind: TargetFilterTrigger, Column: column})
	click(t, w, Target{Kind: TargetFilterOption, Column: column, Value: "Mai Hassan"})

	frame, err := w.HandleEvent(context.Background(), Keydown("Escape", Target{Kind: TargetFilterOption, Column: column, Value: "Mai Hassan"}))

	require.NoError(t, err)
	assert.Equal(t, "survey-filter-accountManager", frame.Focus)
	assert.NotContains(t, frame.HTML, "filter-dropdown")
	assert.False(t, w.State().HasActiveFilters())

	frame, err = w.HandleEvent(context.Background(), Keydown("Escape", Target{}))
	require.NoError(t, err)
	assert.Empty(t, frame.Focus)
}

func TestWidget_TriggerTogglesControl(t *testing.T) {
	w, _ := newLoadedWidget(t, surveyRows(9))
	target := Target{Kind: TargetFilterTrigger, Column: survey.FieldAccountManager}

	frame, err := w.HandleEvent(context.Background(), Keydown("Enter", target))
	require.NoError(t, err)
	assert.Contains(t, frame.HTML, "filter-dropdown")

	frame = click(t, w, target)
	assert.NotContains(t, frame.HTML, "filter-dropdown")
	assert.Equal(t, "survey-filter-accountManager", frame.Focus)
}

func TestWidget_FilterClear(t *testing.T) {
	w, _ := newLoadedWidget(t, surveyRows(9))
	column := survey.FieldAccountManager
	click(t, w, Target{Kind: TargetFilterTrigger, Column: column})
	click(t, w, Target{Kind: TargetFilterOption, Column: column, Value: "Mai Hassan"})
	click(t, w, Target{Kind: TargetFilterApply, Column: column})
	click(t, w, Target{Kind: TargetFilterTrigger, Column: column})

	frame := click(t, w, Target{Kind: TargetFilterClear, Column: column})

	assert.Equal(t, "Filter cleared for Account Manager", frame.Announcement)
	assert.Equal(t, 9, frame.Visible)
	assert.NotContains(t, frame.HTML, "filter-dropdown")
}

func TestWidget_FilterOptionsListRawValuesUnderFilter(t *testing.T) {
	w, _ := newLoadedWidget(t, surveyRows(9))
	column := survey.FieldAccountManager
	click(t, w, Target{Kind: TargetFilterTrigger, Column: column})
	click(t, w, Target{Kind: TargetFilterOption, Column: column, Value: "Mai Hassan"})
	click(t, w, Target{Kind: TargetFilterApply, Column: column})

	frame := click(t, w, Target{Kind: TargetFilterTrigger, Column: column})

	assert.Equal(t, 3, frame.Visible)
	assert.Contains(t, frame.HTML, `data-value="Ahmed Saleem"`)
	assert.Contains(t, frame.HTML, `data-value="Ibrahim Fadaly"`)
	assert.Contains(t, frame.HTML, `data-value="Mai Hassan" checked`)
}

func TestWidget_EmptyStates(t *testing.T) {
	w, _ := newLoadedWidget(t, nil)
	frame, err := w.Render()
	require.NoError(t, err)
	assert.Contains(t, frame.HTML, "No data available")
	assert.NotContains(t, frame.HTML, "No matching records")

	w, _ = newLoadedWidget(t, surveyRows(6))
	column := survey.FieldAccountManager
	click(t, w, Target{Kind: TargetFilterTrigger, Column: column})
	click(t, w, Target{Kind: TargetFilterOption, Column: column, Value: "Nobody"})
	frame = click(t, w, Target{Kind: TargetFilterApply, Column: column})

	assert.Zero(t, frame.Visible)
	assert.Contains(t, frame.HTML, "No matching records")
	assert.Contains(t, frame.HTML, `data-kind="clear-all"`)

	frame = click(t, w, Target{Kind: TargetClearAll})
	assert.Equal(t, "All filters cleared", frame.Announcement)
	assert.Equal(t, 6, frame.Visible)
}

func TestWidget_PageEvents(t *testing.T) {
	w, _ := newLoadedWidget(t, surveyRows(30))

	frame := click(t, w, Target{Kind: TargetPage, Page: 2})
	assert.Equal(t, "Page 2 loaded", frame.Announcement)
	assert.Equal(t, 2, frame.CurrentPage)
	assert.Contains(t, frame.HTML, "Showing 26-30 of 30 records")
	assert.Contains(t, frame.HTML, `aria-label="Next page" disabled`)

	for _, page := range []int{2, 0, 3, -1} {
		frame = click(t, w, Target{Kind: TargetPage, Page: page})
		assert.Empty(t, frame.Announcement, "page %d", page)
		assert.Equal(t, 2, frame.CurrentPage)
	}
}

func TestWidget_PersistsAndRestoresViewState(t *testing.T) {
	w, storage := newLoadedWidget(t, surveyRows(30))
	click(t, w, Target{Kind: TargetSortHeader, Column: survey.FieldCompletionDate})
	click(t, w, Target{Kind: TargetPage, Page: 2})

	raw, found, err := storage.Get(context.Background(), table.StateKey("survey"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, raw, `"sortColumn":"completionDate"`)

	restored := New(context.Background(), "survey", mocks.Rows(surveyRows(30)), storage, zaptest.NewLogger(t))
	frame, err := restored.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, frame.CurrentPage)
	assert.Equal(t, survey.FieldCompletionDate, restored.State().SortColumn)
}

func TestWidget_UIStateIsNotPersisted(t *testing.T) {
	w, storage := newLoadedWidget(t, surveyRows(9))
	click(t, w, Target{Kind: TargetFilterTrigger, Column: survey.FieldAccountManager})
	click(t, w, Target{Kind: TargetFilterOption, Column: survey.FieldAccountManager, Value: "Mai Hassan"})

	raw, _, err := storage.Get(context.Background(), table.StateKey("survey"))
	require.NoError(t, err)
	assert.NotContains(t, raw, "Mai Hassan")
}

func TestWidget_InvalidEventsLeaveWidgetInteractive(t *testing.T) {
	w, _ := newLoadedWidget(t, surveyRows(9))
	ctx := context.Background()

	_, err := w.HandleEvent(ctx, Event{Type: "hover", Target: Target{Kind: TargetPage}})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = w.HandleEvent(ctx, Click(Target{Kind: "explode"}))
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = w.HandleEvent(ctx, Click(Target{Kind: TargetSortHeader}))
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = w.HandleEvent(ctx, Click(Target{Kind: TargetSortHeader, Column: survey.FieldServiceType}))
	assert.ErrorIs(t, err, table.ErrNotSortable)

	_, err = w.HandleEvent(ctx, Click(Target{Kind: TargetFilterTrigger, Column: survey.FieldCustomerName}))
	assert.ErrorIs(t, err, table.ErrNotFilterable)

	frame := click(t, w, Target{Kind: TargetSortHeader, Column: survey.FieldCustomerName})
	assert.Equal(t, "Table sorted by Customer Name ascending", frame.Announcement)
}

func TestWidget_DisabledFeatures(t *testing.T) {
	w, _ := newLoadedWidget(t, surveyRows(30), WithSorting(false), WithFiltering(false), WithPagination(false))

	frame, err := w.Render()
	require.NoError(t, err)
	assert.NotContains(t, frame.HTML, `data-kind="sort-header"`)
	assert.NotContains(t, frame.HTML, `data-kind="filter-trigger"`)
	assert.NotContains(t, frame.HTML, "pagination-container")
	assert.Equal(t, 1, frame.TotalPages)
	assert.Contains(t, frame.HTML, "Customer 29")

	_, err = w.HandleEvent(context.Background(), Click(Target{Kind: TargetSortHeader, Column: survey.FieldNPSScore}))
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = w.HandleEvent(context.Background(), Click(Target{Kind: TargetFilterTrigger, Column: survey.FieldAccountManager}))
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestWidget_RendersNormalizedText(t *testing.T) {
	rows := []survey.Row{{
		ID:             "1",
		CustomerName:   "Ø³Ø§ÙƒÙˆ",
		AccountManager: "Ahmed Saleem",
		CompletionDate: "not a date",
	}}
	w, _ := newLoadedWidget(t, rows)

	frame, err := w.Render()

	require.NoError(t, err)
	assert.Contains(t, frame.HTML, "ساكو")
	assert.Contains(t, frame.HTML, "not a date")
	assert.Contains(t, frame.HTML, `<span class="no-data">—</span>`)
}
