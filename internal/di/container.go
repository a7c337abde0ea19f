// Package di provides dependency injection configuration for the continue-watching server.
package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"

	"github.com/listenupapp/continue-watching/internal/config"
	"github.com/listenupapp/continue-watching/internal/di/providers"
	"github.com/listenupapp/continue-watching/internal/logger"
	"github.com/listenupapp/continue-watching/internal/records"
	"github.com/listenupapp/continue-watching/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetricsRegistry)
	do.Provide(injector, providers.ProvideTracing)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideRecordsReader)

	// Business services
	do.Provide(injector, providers.ProvideContinueWatchingService)
	do.Provide(injector, providers.ProvidePresenterRegistry)

	// Workers
	do.Provide(injector, providers.ProvideSlotWatcher)
	do.Provide(injector, providers.ProvideRateLimiter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*prometheus.Registry](injector)
	if _, err := do.Invoke[*providers.TracingHandle](injector); err != nil {
		return err
	}

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*records.Reader](injector)
	_ = do.MustInvoke[*service.ContinueWatchingService](injector)
	_ = do.MustInvoke[*providers.RegistryHandle](injector)

	// Workers
	if _, err := do.Invoke[*providers.SlotWatcherHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
