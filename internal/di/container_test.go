package di

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/continue-watching/internal/config"
	"github.com/listenupapp/continue-watching/internal/di/providers"
	"github.com/listenupapp/continue-watching/internal/records"
	"github.com/listenupapp/continue-watching/internal/service"
)

// newTestContainer builds the container with a config that does not read
// the process arguments.
func newTestContainer(t *testing.T, cfg *config.Config) *do.RootScope {
	t.Helper()

	injector := NewContainer()
	do.OverrideValue(injector, cfg)
	t.Cleanup(func() { _ = injector.Shutdown() })
	return injector
}

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), backend)
	if backend == config.BackendSQLite {
		path += ".db"
	}
	return &config.Config{
		App:     config.AppConfig{Environment: "development"},
		Logger:  config.LoggerConfig{Level: "error"},
		Storage: config.StorageConfig{Backend: backend, Path: path, Watch: true},
		Server:  config.ServerConfig{Port: "0"},
		Carousel: config.CarouselConfig{
			WatchPathPrefix: "/watch/",
		},
	}
}

func TestContainer_StoreForEachBackend(t *testing.T) {
	for _, backend := range []string{config.BackendBadger, config.BackendSQLite, config.BackendFile} {
		t.Run(backend, func(t *testing.T) {
			injector := newTestContainer(t, testConfig(t, backend))

			handle, err := do.Invoke[*providers.StoreHandle](injector)
			require.NoError(t, err)

			ctx := context.Background()
			require.NoError(t, handle.PutSlot(ctx, records.SlotWatchHistory,
				[]byte(`{"aot":[{"id":"aot-1","number":1,"image":"a.jpg"}]}`)))

			svc := do.MustInvoke[*service.ContinueWatchingService](injector)
			entries := svc.ContinueWatching(ctx)
			require.Len(t, entries, 1)
			assert.Equal(t, "aot-1", entries[0].Episode.ID)

			assert.Equal(t, backend == config.BackendFile, handle.Files != nil)
		})
	}
}

func TestContainer_WatcherOnlyForFileBackend(t *testing.T) {
	injector := newTestContainer(t, testConfig(t, config.BackendBadger))
	handle, err := do.Invoke[*providers.SlotWatcherHandle](injector)
	require.NoError(t, err)
	assert.Nil(t, handle.Watcher)

	cfg := testConfig(t, config.BackendFile)
	require.NoError(t, os.MkdirAll(cfg.Storage.Path, 0o755))
	injector = newTestContainer(t, cfg)
	handle, err = do.Invoke[*providers.SlotWatcherHandle](injector)
	require.NoError(t, err)
	assert.NotNil(t, handle.Watcher)
}

func TestContainer_RateLimiterFollowsConfig(t *testing.T) {
	cfg := testConfig(t, config.BackendBadger)
	injector := newTestContainer(t, cfg)
	handle := do.MustInvoke[*providers.RateLimiterHandle](injector)
	assert.Nil(t, handle.KeyedRateLimiter)

	cfg = testConfig(t, config.BackendBadger)
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 5, Burst: 5}
	injector = newTestContainer(t, cfg)
	handle = do.MustInvoke[*providers.RateLimiterHandle](injector)
	assert.NotNil(t, handle.KeyedRateLimiter)
}

func TestContainer_HTTPServerServesHealth(t *testing.T) {
	injector := newTestContainer(t, testConfig(t, config.BackendBadger))

	srv := do.MustInvoke[*providers.HTTPServerHandle](injector)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
