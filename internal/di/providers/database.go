package providers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/listenupapp/continue-watching/internal/config"
	"github.com/listenupapp/continue-watching/internal/logger"
	"github.com/listenupapp/continue-watching/internal/store"
	"github.com/listenupapp/continue-watching/internal/store/filestore"
	"github.com/listenupapp/continue-watching/internal/store/redisstore"
	"github.com/listenupapp/continue-watching/internal/store/sqlite"
)

// StoreHandle wraps the configured slot backend with shutdown capability.
type StoreHandle struct {
	store.SlotStore
	// Files is set only for the file backend, which the slot watcher needs.
	Files *filestore.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// OpenSlotStore opens the slot backend selected by cfg.
func OpenSlotStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (store.SlotStore, error) {
	switch cfg.Backend {
	case config.BackendBadger:
		return store.New(cfg.Path, logger)
	case config.BackendSQLite:
		return sqlite.Open(cfg.Path, logger)
	case config.BackendFile:
		return filestore.New(cfg.Path, logger)
	case config.BackendRedis:
		return redisstore.Open(ctx, cfg.RedisURL, cfg.RedisPrefix, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// ProvideStore provides the slot store selected by configuration.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	slots, err := OpenSlotStore(context.Background(), cfg.Storage, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Slot store initialized", "backend", cfg.Storage.Backend)

	handle := &StoreHandle{SlotStore: slots}
	if fs, ok := slots.(*filestore.Store); ok {
		handle.Files = fs
	}
	return handle, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
