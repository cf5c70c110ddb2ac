package mocks

import (
	"context"
	"errors"

	"github.com/godilite/survey-table/internal/service"
	"github.com/godilite/survey-table/internal/widget"
)

// MockWidgets is a mock implementation of the Widgets interface.
type MockWidgets struct {
	RenderFunc   func(id string) (widget.Frame, error)
	DispatchFunc func(ctx context.Context, id string, ev widget.Event) (widget.Frame, error)
	RefreshFunc  func(ctx context.Context, id string) (widget.Frame, error)
}

// Render implements the Widgets interface
func (m *MockWidgets) Render(id string) (widget.Frame, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(id)
	}
	return widget.Frame{}, errors.New("RenderFunc not implemented")
}

// Dispatch implements the Widgets interface
func (m *MockWidgets) Dispatch(ctx context.Context, id string, ev widget.Event) (widget.Frame, error) {
	if m.DispatchFunc != nil {
		return m.DispatchFunc(ctx, id, ev)
	}
	return widget.Frame{}, errors.New("DispatchFunc not implemented")
}

// Refresh implements the Widgets interface
func (m *MockWidgets) Refresh(ctx context.Context, id string) (widget.Frame, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, id)
	}
	return widget.Frame{}, errors.New("RefreshFunc not implemented")
}

// MockSummaryService is a mock implementation of the SummaryService interface.
type MockSummaryService struct {
	WidgetSummaryFunc func(ctx context.Context, widgetID string) (service.Summary, error)
}

// WidgetSummary implements the SummaryService interface
func (m *MockSummaryService) WidgetSummary(ctx context.Context, widgetID string) (service.Summary, error) {
	if m.WidgetSummaryFunc != nil {
		return m.WidgetSummaryFunc(ctx, widgetID)
	}
	return service.Summary{}, errors.New("WidgetSummaryFunc not implemented")
}
