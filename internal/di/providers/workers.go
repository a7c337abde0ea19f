package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/listenupapp/continue-watching/internal/config"
	"github.com/listenupapp/continue-watching/internal/logger"
	"github.com/listenupapp/continue-watching/internal/ratelimit"
	"github.com/listenupapp/continue-watching/internal/records"
	"github.com/listenupapp/continue-watching/internal/watcher"
)

// SlotWatcherHandle wraps the slot file watcher with shutdown capability.
// Watcher is nil when watching is disabled.
type SlotWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SlotWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideSlotWatcher watches the slot directory of the file backend and
// refreshes every open carousel when one of the three records changes.
func ProvideSlotWatcher(i do.Injector) (*SlotWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	registry := do.MustInvoke[*RegistryHandle](i)

	if !cfg.WatchEnabled() || storeHandle.Files == nil {
		log.Info("Slot watcher disabled", "backend", cfg.Storage.Backend)
		return &SlotWatcherHandle{}, nil
	}

	w, err := watcher.New(log.Logger, watcher.Options{})
	if err != nil {
		return nil, err
	}

	dir := storeHandle.Files.Dir()
	if err := w.Watch(dir); err != nil {
		_ = w.Stop()
		return nil, err
	}

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("Slot watcher error", "error", err)
		}
	}()

	// Process events in background
	go forwardSlotEvents(ctx, w.Events(), w.Errors(), func(event watcher.Event) {
		slot, ok := storeHandle.Files.SlotForPath(event.Path)
		if !ok || !records.IsRecordSlot(slot) {
			return
		}
		refreshed := registry.RefreshAll(ctx)
		log.Debug("Record slot changed",
			"slot", slot,
			"type", event.Type,
			"refreshed", refreshed,
		)
	}, log.Logger)

	log.Info("Slot watcher started", "dir", dir)

	return &SlotWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}

// forwardSlotEvents hands settled watcher events to onEvent until ctx is
// cancelled or the watcher closes its channels.
func forwardSlotEvents(ctx context.Context, events <-chan watcher.Event, errs <-chan error, onEvent func(watcher.Event), log *slog.Logger) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			onEvent(event)
		case err, ok := <-errs:
			if !ok {
				return
			}
			log.Warn("slot watcher error", "error", err)
		case <-ctx.Done():
			return
		}
	}
}

// RateLimiterHandle wraps the per-client rate limiter with shutdown capability.
// KeyedRateLimiter is nil when rate limiting is disabled.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	if h.KeyedRateLimiter != nil {
		h.Stop()
	}
	return nil
}

// ProvideRateLimiter provides the /api/v1 rate limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.RateLimit.Enabled {
		log.Info("Rate limiting disabled by configuration")
		return &RateLimiterHandle{}, nil
	}

	log.Info("Rate limiting enabled", "rps", cfg.RateLimit.RPS, "burst", cfg.RateLimit.Burst)
	return &RateLimiterHandle{
		KeyedRateLimiter: ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}, nil
}
