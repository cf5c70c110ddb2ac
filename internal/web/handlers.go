package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/godilite/survey-table/internal/service"
	"github.com/godilite/survey-table/internal/table"
	"github.com/godilite/survey-table/internal/widget"
)

const maxEventBody = 64 << 10

type pageView struct {
	Widgets []pageWidget
}

type pageWidget struct {
	ID   string
	HTML template.HTML
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	view := pageView{}
	for _, id := range s.widgets.IDs() {
		frame, err := s.widgets.Render(id)
		if err != nil {
			s.logger.Error("failed to render widget", zap.String("widget", id), zap.Error(err))
			continue
		}
		// Frame HTML is produced by html/template and already escaped.
		view.Widgets = append(view.Widgets, pageWidget{ID: id, HTML: template.HTML(frame.HTML)})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, view); err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
	}
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	frame, err := s.widgets.Render(chi.URLParam(r, "id"))
	s.respondFrame(w, r, frame, err)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev widget.Event
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody)).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event body: "+err.Error())
		return
	}
	frame, err := s.widgets.Dispatch(r.Context(), chi.URLParam(r, "id"), ev)
	s.respondFrame(w, r, frame, err)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	frame, err := s.widgets.Refresh(r.Context(), chi.URLParam(r, "id"))
	s.respondFrame(w, r, frame, err)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.summaries.WidgetSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) respondFrame(w http.ResponseWriter, r *http.Request, frame widget.Frame, err error) {
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, code, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, widget.ErrUnknownWidget), errors.Is(err, service.ErrNoRows):
		return http.StatusNotFound
	case errors.Is(err, widget.ErrInvalidEvent),
		errors.Is(err, table.ErrUnknownColumn),
		errors.Is(err, table.ErrNotSortable),
		errors.Is(err, table.ErrNotFilterable):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
