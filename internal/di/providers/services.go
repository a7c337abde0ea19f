package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do/v2"

	"github.com/listenupapp/continue-watching/internal/carousel"
	"github.com/listenupapp/continue-watching/internal/logger"
	"github.com/listenupapp/continue-watching/internal/metrics"
	"github.com/listenupapp/continue-watching/internal/records"
	"github.com/listenupapp/continue-watching/internal/service"
)

// ProvideRecordsReader provides the reader for the three client records.
func ProvideRecordsReader(i do.Injector) (*records.Reader, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return records.NewReader(storeHandle.SlotStore, log.Logger), nil
}

// ProvideContinueWatchingService provides the continue-watching service.
func ProvideContinueWatchingService(i do.Injector) (*service.ContinueWatchingService, error) {
	reader := do.MustInvoke[*records.Reader](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewContinueWatchingService(reader, log.Logger), nil
}

// RegistryHandle wraps the presenter registry so open carousels are closed
// on shutdown.
type RegistryHandle struct {
	*carousel.Registry
}

// Shutdown implements do.Shutdownable.
func (h *RegistryHandle) Shutdown() error {
	h.CloseAll()
	return nil
}

// ProvidePresenterRegistry provides the registry of live carousel presenters.
func ProvidePresenterRegistry(i do.Injector) (*RegistryHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return &RegistryHandle{Registry: carousel.NewRegistry(log.Logger)}, nil
}

// ProvideMetricsRegistry provides a Prometheus registry holding the service
// collectors plus the Go runtime and process collectors.
func ProvideMetricsRegistry(i do.Injector) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(reg)
	return reg, nil
}
