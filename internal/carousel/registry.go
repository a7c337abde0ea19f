package carousel

import (
	"context"
	"log/slog"
	"sync"
)

// Registry tracks live presenters so a change to the records can re-render
// every open carousel.
type Registry struct {
	mu         sync.RWMutex
	presenters map[string]*Presenter
	logger     *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		presenters: make(map[string]*Presenter),
		logger:     logger,
	}
}

// Add registers a presenter under id.
func (r *Registry) Add(id string, p *Presenter) {
	r.mu.Lock()
	r.presenters[id] = p
	r.mu.Unlock()
}

// Remove unregisters id. The presenter itself is not closed.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.presenters, id)
	r.mu.Unlock()
}

// Len returns the number of registered presenters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.presenters)
}

// RefreshAll refreshes every registered presenter and returns how many
// rendered without error.
func (r *Registry) RefreshAll(ctx context.Context) int {
	r.mu.RLock()
	snapshot := make(map[string]*Presenter, len(r.presenters))
	for id, p := range r.presenters {
		snapshot[id] = p
	}
	r.mu.RUnlock()

	ok := 0
	for id, p := range snapshot {
		if err := p.Refresh(ctx); err != nil {
			r.logger.Warn("Failed to refresh carousel", "presenter_id", id, "error", err)
			continue
		}
		ok++
	}
	return ok
}

// CloseAll closes and unregisters every presenter.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	presenters := r.presenters
	r.presenters = make(map[string]*Presenter)
	r.mu.Unlock()

	for _, p := range presenters {
		p.Close()
	}
}
