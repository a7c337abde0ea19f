package carousel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/listenupapp/continue-watching/internal/domain"
	"github.com/listenupapp/continue-watching/internal/layout"
	"github.com/listenupapp/continue-watching/internal/metrics"
)

// DefaultDebounceDelay is the quiet period after the last resize event before
// the layout is derived again.
const DefaultDebounceDelay = 200 * time.Millisecond

// Render triggers, used as metric labels.
const (
	TriggerStart   = "start"
	TriggerResize  = "resize"
	TriggerRefresh = "refresh"
)

// ErrClosed is returned by Start on a presenter that was already closed.
var ErrClosed = errors.New("carousel: presenter closed")

// Source supplies the ordered resume entries.
type Source interface {
	ContinueWatching(ctx context.Context) []domain.ResumeEntry
}

// Capability is the carousel widget a presenter drives.
type Capability interface {
	Render(ctx context.Context, frame Frame) error
}

// Options configures a Presenter.
type Options struct {
	DebounceDelay time.Duration
	AutoplayDelay time.Duration
}

func (o *Options) setDefaults() {
	if o.DebounceDelay <= 0 {
		o.DebounceDelay = DefaultDebounceDelay
	}
	if o.AutoplayDelay <= 0 {
		o.AutoplayDelay = DefaultAutoplayDelay
	}
}

// Presenter keeps one carousel in step with the records and the viewport.
//
// Resize events are debounced; Refresh re-reads the records. Close releases
// the pending resize timer and must be called when the carousel goes away.
type Presenter struct {
	source   Source
	carousel Capability
	nav      Navigator
	opts     Options
	logger   *slog.Logger
	debounce *Debouncer

	// mu guards the fields below and serializes renders.
	mu      sync.Mutex
	ctx     context.Context
	width   float64
	slides  int
	entries []domain.ResumeEntry
	started bool
	closed  bool
}

// NewPresenter creates a presenter. Nothing is rendered until Start.
func NewPresenter(source Source, carousel Capability, nav Navigator, opts Options, logger *slog.Logger) *Presenter {
	opts.setDefaults()
	if nav == nil {
		nav = PathNavigator{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Presenter{
		source:   source,
		carousel: carousel,
		nav:      nav,
		opts:     opts,
		logger:   logger,
		debounce: NewDebouncer(opts.DebounceDelay),
	}
}

// Start derives and renders the first frame for the given width.
// ctx is also used for renders triggered later by Resize.
func (p *Presenter) Start(ctx context.Context, width float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if !p.started {
		p.started = true
		metrics.ActivePresenters.Inc()
	}

	p.ctx = ctx
	p.width = width
	p.slides = layout.SlidesPerView(width)
	p.entries = p.source.ContinueWatching(ctx)
	return p.renderLocked(ctx, TriggerStart)
}

// Resize records a viewport width change. Bursts collapse into one derivation
// for the last width, DebounceDelay after the burst.
func (p *Presenter) Resize(width float64) {
	p.debounce.Trigger(func() {
		p.applyWidth(width)
	})
}

func (p *Presenter) applyWidth(width float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || !p.started || width == p.width {
		return
	}

	slides := layout.SlidesPerView(width)
	if slides == p.slides {
		p.width = width
		return
	}

	// Commit only once the widget has the new frame, so a later resize
	// retries instead of matching a count the client never saw.
	prevWidth, prevSlides := p.width, p.slides
	p.width, p.slides = width, slides
	if err := p.renderLocked(p.ctx, TriggerResize); err != nil {
		p.width, p.slides = prevWidth, prevSlides
		p.logger.Warn("Failed to render carousel after resize", "width", width, "error", err)
	}
}

// Refresh re-reads the records and renders again. It is a no-op before Start
// and after Close.
func (p *Presenter) Refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || !p.started {
		return nil
	}
	p.entries = p.source.ContinueWatching(ctx)
	return p.renderLocked(ctx, TriggerRefresh)
}

// Width returns the last applied viewport width.
func (p *Presenter) Width() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width
}

// SlidesPerView returns the slide count of the last frame.
func (p *Presenter) SlidesPerView() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slides
}

// Close cancels any pending resize and stops all further renders.
// Safe to call more than once.
func (p *Presenter) Close() {
	p.debounce.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.started {
		metrics.ActivePresenters.Dec()
	}
}

func (p *Presenter) renderLocked(ctx context.Context, trigger string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	frame := BuildFrame(p.entries, p.slides, p.nav, p.opts.AutoplayDelay)
	if err := p.carousel.Render(ctx, frame); err != nil {
		return err
	}
	metrics.FramesRenderedTotal.WithLabelValues(trigger).Inc()
	p.logger.Debug("Rendered carousel",
		"trigger", trigger,
		"slides_per_view", p.slides,
		"entries", len(p.entries),
	)
	return nil
}
