package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/continue-watching/internal/carousel"
	"github.com/listenupapp/continue-watching/internal/metrics"
	"github.com/listenupapp/continue-watching/internal/ratelimit"
	"github.com/listenupapp/continue-watching/internal/records"
	"github.com/listenupapp/continue-watching/internal/service"
	"github.com/listenupapp/continue-watching/internal/store"
)

const (
	seedHistory = `{
		"frieren": [{"id":"fr-1","number":1,"image":"fr1.jpg"},{"id":"fr-2","number":2,"title":"Journey","image":"fr2.jpg"}],
		"aot": [{"id":"aot-5","number":5,"title":"Ep5","image":"aot5.jpg"}]
	}`
	seedVisited = `{
		"frieren": {"timestamp": 100, "titleEnglish": "Frieren"},
		"aot": {"timestamp": 200, "titleRomaji": "Shingeki"}
	}`
	seedProgress = `{"aot-5": {"playbackPercentage": 42}, "fr-2": {"playbackPercentage": 0}}`
)

type testServer struct {
	*Server
	api   humatest.TestAPI
	store *store.Store
}

type serverOption func(*Options)

func withRateLimit(rps float64, burst int) serverOption {
	return func(o *Options) { o.RateLimiter = ratelimit.New(rps, burst) }
}

func setupTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.NewInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	reader := records.NewReader(st, logger)
	services := &Services{
		ContinueWatching: service.NewContinueWatchingService(reader, logger),
	}

	reg := prometheus.NewRegistry()
	metrics.Register(reg)

	options := Options{
		Carousel:  carousel.Options{DebounceDelay: 20 * time.Millisecond, AutoplayDelay: 3 * time.Second},
		Navigator: carousel.PathNavigator{Prefix: "/watch/"},
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.RateLimiter != nil {
		t.Cleanup(options.RateLimiter.Stop)
	}

	srv := NewServer(st, services, nil, options, logger)
	t.Cleanup(srv.Registry().CloseAll)

	return &testServer{
		Server: srv,
		api:    humatest.Wrap(t, srv.API()),
		store:  st,
	}
}

func (ts *testServer) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, ts.store.PutSlot(ctx, records.SlotWatchHistory, []byte(seedHistory)))
	require.NoError(t, ts.store.PutSlot(ctx, records.SlotLastVisited, []byte(seedVisited)))
	require.NoError(t, ts.store.PutSlot(ctx, records.SlotPlaybackProgress, []byte(seedProgress)))
}

func TestServer_MetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	ts.seed(t)

	// Trigger a derivation so the slot counters have samples.
	resp := ts.api.Get("/api/v1/continue-watching")
	require.Equal(t, http.StatusOK, resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "records_slot_reads_total")
}

func TestServer_RateLimitOnlyGuardsAPI(t *testing.T) {
	ts := setupTestServer(t, withRateLimit(0.001, 2))

	call := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "203.0.113.9:4000"
		w := httptest.NewRecorder()
		ts.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("/api/v1/layout?width=800"))
	assert.Equal(t, http.StatusOK, call("/api/v1/layout?width=800"))
	assert.Equal(t, http.StatusTooManyRequests, call("/api/v1/layout?width=800"))

	// Health is outside /api/v1.
	assert.Equal(t, http.StatusOK, call("/health"))
}

func TestServer_CORS(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/continue-watching", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
