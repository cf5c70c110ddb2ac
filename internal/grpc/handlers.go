package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/godilite/survey-table/internal/service"
	"github.com/godilite/survey-table/internal/source"
	"github.com/godilite/survey-table/internal/table"
	"github.com/godilite/survey-table/internal/widget"
)

const defaultGRPCTimeout = 10 * time.Second

type TableHandlers struct {
	widgets   Widgets
	summaries SummaryService
	logger    *zap.Logger
	timeout   time.Duration
}

// NewTableHandlers initializes the gRPC handlers.
func NewTableHandlers(widgets Widgets, summaries SummaryService, logger *zap.Logger, timeout time.Duration) *TableHandlers {
	if widgets == nil {
		panic("nil Widgets provided to NewTableHandlers")
	}
	if summaries == nil {
		panic("nil SummaryService provided to NewTableHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultGRPCTimeout
	}
	return &TableHandlers{
		widgets:   widgets,
		summaries: summaries,
		logger:    logger.Named("grpc-handler"),
		timeout:   timeout,
	}
}

func widgetID(req *structpb.Struct) (string, error) {
	id := req.GetFields()["widget"].GetStringValue()
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "widget is required")
	}
	return id, nil
}

func parseEvent(req *structpb.Struct) (widget.Event, error) {
	raw, ok := req.GetFields()["event"]
	if !ok || raw.GetStructValue() == nil {
		return widget.Event{}, status.Error(codes.InvalidArgument, "event is required")
	}
	data, err := protojson.Marshal(raw)
	if err != nil {
		return widget.Event{}, status.Errorf(codes.InvalidArgument, "event: %v", err)
	}
	var ev widget.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return widget.Event{}, status.Errorf(codes.InvalidArgument, "event: %v", err)
	}
	return ev, nil
}

func frameStruct(f widget.Frame) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"html":         f.HTML,
		"announcement": f.Announcement,
		"focus":        f.Focus,
		"total_pages":  f.TotalPages,
		"current_page": f.CurrentPage,
		"visible":      f.Visible,
		"total":        f.Total,
		"stale":        f.Stale,
	})
}

// toStruct converts a JSON-tagged value into a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func (s *TableHandlers) handleError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, widget.ErrUnknownWidget):
		s.logger.Info("unknown widget", zap.String("op", op), zap.Error(err))
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, widget.ErrInvalidEvent),
		errors.Is(err, table.ErrUnknownColumn),
		errors.Is(err, table.ErrNotSortable),
		errors.Is(err, table.ErrNotFilterable):
		s.logger.Info("invalid request", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrNoRows):
		s.logger.Info("nothing to summarize", zap.String("op", op))
		return status.Error(codes.NotFound, "no rows to summarize")
	case errors.Is(err, source.ErrSourceUnavailable):
		s.logger.Error("source unavailable", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Unavailable, "survey source unavailable")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *TableHandlers) respond(ctx context.Context, op string, frame widget.Frame, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	out, err := frameStruct(frame)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return out, nil
}

func (s *TableHandlers) Render(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := widgetID(req)
	if err != nil {
		return nil, err
	}
	frame, err := s.widgets.Render(id)
	return s.respond(ctx, "Render", frame, err)
}

func (s *TableHandlers) Dispatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := widgetID(req)
	if err != nil {
		return nil, err
	}
	ev, err := parseEvent(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	frame, err := s.widgets.Dispatch(ctx, id, ev)
	return s.respond(ctx, "Dispatch", frame, err)
}

func (s *TableHandlers) Refresh(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := widgetID(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	frame, err := s.widgets.Refresh(ctx, id)
	return s.respond(ctx, "Refresh", frame, err)
}

func (s *TableHandlers) Summary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := widgetID(req)
	if err != nil {
		return nil, err
	}

	summary, err := s.summaries.WidgetSummary(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, "Summary", err)
	}
	out, err := toStruct(summary)
	if err != nil {
		return nil, s.handleError(ctx, "Summary", err)
	}
	return out, nil
}
