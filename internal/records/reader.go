// Package records reads the client's three persisted records.
//
// Reads never fail. A missing slot is the normal state for a new viewer and
// yields an empty record. A slot that cannot be parsed is logged and also
// yields an empty record, so one corrupt record never breaks the whole view.
package records

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/listenupapp/continue-watching/internal/domain"
	"github.com/listenupapp/continue-watching/internal/metrics"
	"github.com/listenupapp/continue-watching/internal/store"
)

// Slot names used by the client.
const (
	SlotWatchHistory     = "watched-episodes"
	SlotLastVisited      = "last-anime-visited"
	SlotPlaybackProgress = "all_episode_times"
)

// Slots lists every slot the reader knows about.
var Slots = []string{SlotWatchHistory, SlotLastVisited, SlotPlaybackProgress}

// IsRecordSlot reports whether name is one of the slots the reader reads.
func IsRecordSlot(name string) bool {
	return slices.Contains(Slots, name)
}

// SlotSource returns the raw bytes stored under a slot name.
// It returns store.ErrSlotNotFound when the slot has never been written.
type SlotSource interface {
	GetSlot(ctx context.Context, slot string) ([]byte, error)
}

// Reader reads and decodes the three records from a SlotSource.
type Reader struct {
	source SlotSource
	logger *slog.Logger
}

// NewReader creates a Reader. A nil logger discards log output.
func NewReader(source SlotSource, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reader{source: source, logger: logger}
}

// ReadWatchHistory returns the watch history, or an empty history.
func (r *Reader) ReadWatchHistory(ctx context.Context) domain.WatchHistory {
	history, _ := readSlot(ctx, r, SlotWatchHistory, DecodeWatchHistory)
	return history
}

// ReadLastVisited returns the last-visited record, or an empty record.
func (r *Reader) ReadLastVisited(ctx context.Context) domain.LastVisited {
	visited, ok := readSlot(ctx, r, SlotLastVisited, DecodeLastVisited)
	if !ok || visited == nil {
		return domain.LastVisited{}
	}
	return visited
}

// ReadPlaybackProgress returns the playback progress record, or an empty record.
func (r *Reader) ReadPlaybackProgress(ctx context.Context) domain.PlaybackProgress {
	progress, ok := readSlot(ctx, r, SlotPlaybackProgress, DecodePlaybackProgress)
	if !ok || progress == nil {
		return domain.PlaybackProgress{}
	}
	return progress
}

// Snapshot reads all three records for one derivation pass.
func (r *Reader) Snapshot(ctx context.Context) domain.Snapshot {
	return domain.Snapshot{
		History:     r.ReadWatchHistory(ctx),
		LastVisited: r.ReadLastVisited(ctx),
		Playback:    r.ReadPlaybackProgress(ctx),
	}
}

// readSlot fetches and decodes one slot. It reports false when the zero value
// was substituted for a missing, unreadable or malformed slot.
func readSlot[T any](ctx context.Context, r *Reader, slot string, decode func([]byte) (T, error)) (T, bool) {
	var zero T

	data, err := r.source.GetSlot(ctx, slot)
	if errors.Is(err, store.ErrSlotNotFound) {
		r.logger.Debug("record slot empty", "slot", slot)
		metrics.SlotReadsTotal.WithLabelValues(slot, metrics.OutcomeMissing).Inc()
		return zero, false
	}
	if err != nil {
		r.logger.Error("failed to read record slot", "slot", slot, "error", err)
		metrics.SlotReadsTotal.WithLabelValues(slot, metrics.OutcomeError).Inc()
		return zero, false
	}

	value, err := decode(data)
	if err != nil {
		r.logger.Warn("failed to parse record slot, treating as empty",
			"slot", slot,
			"bytes", len(data),
			"error", err,
		)
		metrics.SlotReadsTotal.WithLabelValues(slot, metrics.OutcomeMalformed).Inc()
		return zero, false
	}

	metrics.SlotReadsTotal.WithLabelValues(slot, metrics.OutcomeOK).Inc()
	return value, true
}
