package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/godilite/survey-table/internal/survey"
)

var (
	ErrUnknownWidget   = errors.New("unknown widget")
	ErrDuplicateWidget = errors.New("duplicate widget")
)

// Registry holds the widgets composed onto one page. It is constructed and
// owned by the application; there is no package-level instance.
type Registry struct {
	mu      sync.RWMutex
	widgets map[string]*Widget
	order   []string
	logger  *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		widgets: make(map[string]*Widget),
		logger:  logger.Named("widget-registry"),
	}
}

func (r *Registry) Add(w *Widget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.widgets[w.ID()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateWidget, w.ID())
	}
	r.widgets[w.ID()] = w
	r.order = append(r.order, w.ID())
	return nil
}

func (r *Registry) Get(id string) (*Widget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.widgets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWidget, id)
	}
	return w, nil
}

// IDs returns widget ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// RefreshAll loads data into every widget concurrently so widgets sharing a
// loader share one source request. Load failures are rendered by the widgets
// themselves; only cancellation is returned.
func (r *Registry) RefreshAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range r.IDs() {
		w, err := r.Get(id)
		if err != nil {
			continue
		}
		id := id
		g.Go(func() error {
			frame, err := w.Refresh(gctx)
			if err != nil {
				return fmt.Errorf("refresh widget %s: %w", id, err)
			}
			r.logger.Info("widget loaded",
				zap.String("widget", id),
				zap.Int("total", frame.Total),
				zap.Int("visible", frame.Visible),
				zap.Bool("stale", frame.Stale))
			return nil
		})
	}
	return g.Wait()
}

// FilteredRows returns the rows widget id currently shows.
func (r *Registry) FilteredRows(id string) ([]survey.Row, error) {
	w, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return w.FilteredRows(), nil
}

// Render returns the current frame of widget id.
func (r *Registry) Render(id string) (Frame, error) {
	w, err := r.Get(id)
	if err != nil {
		return Frame{}, err
	}
	return w.Render()
}

// Dispatch forwards ev to widget id.
func (r *Registry) Dispatch(ctx context.Context, id string, ev Event) (Frame, error) {
	w, err := r.Get(id)
	if err != nil {
		return Frame{}, err
	}
	return w.HandleEvent(ctx, ev)
}

// Refresh reloads the data of widget id.
func (r *Registry) Refresh(ctx context.Context, id string) (Frame, error) {
	w, err := r.Get(id)
	if err != nil {
		return Frame{}, err
	}
	return w.Refresh(ctx)
}
