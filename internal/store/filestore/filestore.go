// Package filestore keeps each slot as a JSON file in a directory, so records
// exported from a browser can be dropped in place and picked up live.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/listenupapp/continue-watching/internal/store"
)

// Ext is the file extension of slot files.
const Ext = ".json"

var _ store.SlotStore = (*Store)(nil)

// Store reads and writes slot files under a directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates the directory if needed and returns a Store rooted at it.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create slot directory: %w", err)
	}
	if logger != nil {
		logger.Info("File slot store ready", "dir", dir)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the directory holding the slot files.
func (s *Store) Dir() string {
	return s.dir
}

// Close is a no-op; files are not held open between calls.
func (s *Store) Close() error {
	return nil
}

// SlotForPath returns the slot name a file path belongs to, if any.
func (s *Store) SlotForPath(path string) (string, bool) {
	if filepath.Dir(filepath.Clean(path)) != filepath.Clean(s.dir) {
		return "", false
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, Ext) {
		return "", false
	}
	return strings.TrimSuffix(base, Ext), true
}

func (s *Store) path(slot string) (string, error) {
	if slot == "" || slot != filepath.Base(slot) || strings.HasPrefix(slot, ".") {
		return "", store.ErrInvalidInput.WithMessage(fmt.Sprintf("invalid slot name %q", slot))
	}
	return filepath.Join(s.dir, slot+Ext), nil
}

// GetSlot returns the raw contents of a slot file.
func (s *Store) GetSlot(ctx context.Context, slot string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(slot)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %q: %w", slot, err)
	}
	return data, nil
}

// PutSlot writes a slot file atomically via a temp file and rename.
func (s *Store) PutSlot(ctx context.Context, slot string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(slot)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+slot+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write slot %q: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close slot %q: %w", slot, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename slot %q: %w", slot, err)
	}
	return nil
}

// DeleteSlot removes a slot file. Deleting a missing slot is not an error.
func (s *Store) DeleteSlot(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(slot)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete slot %q: %w", slot, err)
	}
	return nil
}

// ListSlots returns every slot file ordered by name.
func (s *Store) ListSlots(ctx context.Context) ([]store.SlotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	var slots []store.SlotInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, Ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		slots = append(slots, store.SlotInfo{
			Name:      strings.TrimSuffix(name, Ext),
			Size:      int(info.Size()),
			UpdatedAt: info.ModTime(),
		})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Name < slots[j].Name })
	return slots, nil
}
