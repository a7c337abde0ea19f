// Package api provides the HTTP and WebSocket surface of the continue-watching service.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/continue-watching/internal/carousel"
	"github.com/listenupapp/continue-watching/internal/ratelimit"
	"github.com/listenupapp/continue-watching/internal/store"
	"github.com/listenupapp/continue-watching/internal/validation"
)

// apiPrefix is the versioned path all rate limited operations live under.
const apiPrefix = "/api/v1"

// SlotLister reports which record slots exist in the backing store.
type SlotLister interface {
	ListSlots(ctx context.Context) ([]store.SlotInfo, error)
}

// Options configures the server surface.
type Options struct {
	Carousel    carousel.Options
	Navigator   carousel.Navigator
	CORSOrigins []string
	// RateLimiter limits /api/v1 per client IP; nil disables limiting.
	RateLimiter *ratelimit.KeyedRateLimiter
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	slots     SlotLister
	services  *Services
	registry  *carousel.Registry
	validator *validation.Validator
	opts      Options
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(slots SlotLister, services *Services, registry *carousel.Registry, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Navigator == nil {
		opts.Navigator = carousel.PathNavigator{}
	}
	if registry == nil {
		registry = carousel.NewRegistry(logger)
	}

	router := chi.NewRouter()

	s := &Server{
		slots:     slots,
		services:  services,
		registry:  registry,
		validator: validation.New(),
		opts:      opts,
		router:    router,
		logger:    logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Continue Watching API", "1.0.0")
	humaConfig.Info.Description = "Resume entries and carousel frames derived from client watch records."
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerContinueWatchingRoutes()
	s.registerLayoutRoutes()
	s.registerSlotRoutes()
	s.registerWebSocketRoutes()

	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Registry returns the registry of live WebSocket presenters.
func (s *Server) Registry() *carousel.Registry {
	return s.registry
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))

	if s.opts.RateLimiter != nil {
		limited := ratelimit.Middleware(s.opts.RateLimiter, ratelimit.ClientIP, s.logger)
		s.router.Use(func(next http.Handler) http.Handler {
			guarded := limited(next)
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if strings.HasPrefix(r.URL.Path, apiPrefix+"/") {
					guarded.ServeHTTP(w, r)
					return
				}
				next.ServeHTTP(w, r)
			})
		})
	}
}

// requestLogger logs one line per request through slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
