package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/continue-watching/internal/config"
	"github.com/listenupapp/continue-watching/internal/logger"
	"github.com/listenupapp/continue-watching/internal/telemetry"
)

// TracingHandle flushes spans on shutdown.
type TracingHandle struct {
	Enabled  bool
	shutdown telemetry.ShutdownFunc
}

// Shutdown implements do.Shutdownable.
func (h *TracingHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.shutdown(ctx)
}

// ProvideTracing installs the OpenTelemetry tracer provider when an OTLP
// endpoint is configured.
func ProvideTracing(i do.Injector) (*TracingHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	shutdown, err := telemetry.Init(context.Background(), telemetry.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		SampleRate:  cfg.Telemetry.SampleRate,
		ServiceName: cfg.Telemetry.ServiceName,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	return &TracingHandle{
		Enabled:  cfg.Telemetry.OTLPEndpoint != "",
		shutdown: shutdown,
	}, nil
}
