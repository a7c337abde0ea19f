package providers

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do/v2"

	"github.com/listenupapp/continue-watching/internal/api"
	"github.com/listenupapp/continue-watching/internal/carousel"
	"github.com/listenupapp/continue-watching/internal/config"
	"github.com/listenupapp/continue-watching/internal/logger"
	"github.com/listenupapp/continue-watching/internal/service"
	"github.com/listenupapp/continue-watching/internal/telemetry"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	registry := do.MustInvoke[*RegistryHandle](i)
	limiter := do.MustInvoke[*RateLimiterHandle](i)
	reg := do.MustInvoke[*prometheus.Registry](i)
	tracing := do.MustInvoke[*TracingHandle](i)

	services := &api.Services{
		ContinueWatching: do.MustInvoke[*service.ContinueWatchingService](i),
	}

	handler := api.NewServer(storeHandle.SlotStore, services, registry.Registry, api.Options{
		Carousel: carousel.Options{
			DebounceDelay: cfg.Carousel.DebounceDelay,
			AutoplayDelay: cfg.Carousel.AutoplayDelay,
		},
		Navigator:   carousel.PathNavigator{Prefix: cfg.Carousel.WatchPathPrefix},
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimiter: limiter.KeyedRateLimiter,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}, log.Logger)

	var root http.Handler = handler
	if tracing.Enabled {
		root = telemetry.Middleware(cfg.Telemetry.ServiceName, handler)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
