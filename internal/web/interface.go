package web

import (
	"context"

	"github.com/godilite/survey-table/internal/service"
	"github.com/godilite/survey-table/internal/widget"
)

// Widgets addresses the widgets of the page by id.
type Widgets interface {
	IDs() []string
	Render(id string) (widget.Frame, error)
	Dispatch(ctx context.Context, id string, ev widget.Event) (widget.Frame, error)
	Refresh(ctx context.Context, id string) (widget.Frame, error)
}

type SummaryService interface {
	WidgetSummary(ctx context.Context, widgetID string) (service.Summary, error)
}
