package carousel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/continue-watching/internal/domain"
)

type fakeSource struct {
	mu      sync.Mutex
	entries []domain.ResumeEntry
	calls   atomic.Int32
}

func (s *fakeSource) ContinueWatching(context.Context) []domain.ResumeEntry {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries
}

func (s *fakeSource) set(entries []domain.ResumeEntry) {
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

type recordingCarousel struct {
	mu     sync.Mutex
	frames []Frame
	err    error
}

func (c *recordingCarousel) Render(_ context.Context, frame Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.frames = append(c.frames, frame)
	return nil
}

func (c *recordingCarousel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *recordingCarousel) last() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames[len(c.frames)-1]
}

func newTestPresenter(entries []domain.ResumeEntry) (*Presenter, *fakeSource, *recordingCarousel) {
	src := &fakeSource{entries: entries}
	rc := &recordingCarousel{}
	p := NewPresenter(src, rc, nil, Options{DebounceDelay: 20 * time.Millisecond}, nil)
	return p, src, rc
}

func TestPresenter_StartRendersImmediately(t *testing.T) {
	p, _, rc := newTestPresenter(sampleEntries())
	defer p.Close()

	require.NoError(t, p.Start(context.Background(), 1280))

	require.Equal(t, 1, rc.count())
	frame := rc.last()
	assert.Equal(t, 5, frame.Settings.SlidesPerView)
	assert.Len(t, frame.Slides, 2)
	assert.NotNil(t, frame.Heading)
	assert.Equal(t, 1280.0, p.Width())
}

func TestPresenter_StartEmptySuppressesHeading(t *testing.T) {
	p, _, rc := newTestPresenter(nil)
	defer p.Close()

	require.NoError(t, p.Start(context.Background(), 800))

	assert.Nil(t, rc.last().Heading)
	assert.Equal(t, 3, rc.last().Settings.SlidesPerView)
}

func TestPresenter_ResizeBurstRendersOnce(t *testing.T) {
	p, src, rc := newTestPresenter(sampleEntries())
	defer p.Close()
	require.NoError(t, p.Start(context.Background(), 1280))

	for _, w := range []float64{1250, 1100, 900, 720, 650} {
		p.Resize(w)
	}

	assert.Eventually(t, func() bool { return rc.count() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 2, rc.count())
	assert.Equal(t, 2, rc.last().Settings.SlidesPerView)
	assert.Equal(t, 650.0, p.Width())

	// Resizing re-derives the layout only; records are not read again.
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestPresenter_ResizeWithinBreakpointDoesNotRender(t *testing.T) {
	p, _, rc := newTestPresenter(sampleEntries())
	defer p.Close()
	require.NoError(t, p.Start(context.Background(), 1280))

	p.Resize(1500)

	assert.Eventually(t, func() bool { return p.Width() == 1500 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, rc.count())
	assert.Equal(t, 5, p.SlidesPerView())
}

func TestPresenter_ResizeSameWidthIsNoop(t *testing.T) {
	p, _, rc := newTestPresenter(sampleEntries())
	defer p.Close()
	require.NoError(t, p.Start(context.Background(), 1000))

	p.Resize(1000)
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, 1, rc.count())
}

func TestPresenter_CloseCancelsPendingResize(t *testing.T) {
	p, _, rc := newTestPresenter(sampleEntries())
	require.NoError(t, p.Start(context.Background(), 1280))

	p.Resize(400)
	p.Close()
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, 1, rc.count())
	assert.False(t, p.debounce.Pending())

	// Everything after Close is inert.
	p.Resize(300)
	assert.NoError(t, p.Refresh(context.Background()))
	assert.ErrorIs(t, p.Start(context.Background(), 900), ErrClosed)
	assert.Equal(t, 1, rc.count())
	p.Close()
}

func TestPresenter_RefreshRereadsRecords(t *testing.T) {
	p, src, rc := newTestPresenter(nil)
	defer p.Close()
	require.NoError(t, p.Start(context.Background(), 1280))
	assert.Nil(t, rc.last().Heading)

	src.set(sampleEntries())
	require.NoError(t, p.Refresh(context.Background()))

	assert.Equal(t, 2, rc.count())
	assert.NotNil(t, rc.last().Heading)
	assert.Len(t, rc.last().Slides, 2)
}

func TestPresenter_RefreshBeforeStartIsNoop(t *testing.T) {
	p, src, rc := newTestPresenter(sampleEntries())
	defer p.Close()

	require.NoError(t, p.Refresh(context.Background()))

	assert.Equal(t, 0, rc.count())
	assert.Equal(t, int32(0), src.calls.Load())
}

func TestPresenter_RenderErrorSurfacesFromStart(t *testing.T) {
	src := &fakeSource{}
	rc := &recordingCarousel{err: errors.New("widget gone")}
	p := NewPresenter(src, rc, nil, Options{}, nil)
	defer p.Close()

	assert.EqualError(t, p.Start(context.Background(), 500), "widget gone")
}

func TestPresenter_FailedResizeRenderIsRetried(t *testing.T) {
	p, _, rc := newTestPresenter(sampleEntries())
	defer p.Close()
	require.NoError(t, p.Start(context.Background(), 1280))

	rc.mu.Lock()
	rc.err = errors.New("client too slow")
	rc.mu.Unlock()

	p.Resize(600)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 5, p.SlidesPerView(), "failed render must not commit the new count")
	assert.Equal(t, 1280.0, p.Width())

	rc.mu.Lock()
	rc.err = nil
	rc.mu.Unlock()

	// Same breakpoint as the failed width.
	p.Resize(650)
	assert.Eventually(t, func() bool { return rc.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, rc.last().Settings.SlidesPerView)
	assert.Equal(t, 2, p.SlidesPerView())
}
