// Package service holds the application services behind the HTTP API.
package service

import (
	"context"
	"log/slog"

	"github.com/listenupapp/continue-watching/internal/domain"
	"github.com/listenupapp/continue-watching/internal/metrics"
	"github.com/listenupapp/continue-watching/internal/records"
	"github.com/listenupapp/continue-watching/internal/resume"
)

// ContinueWatchingService derives the continue-watching list from the
// persisted client records.
type ContinueWatchingService struct {
	reader *records.Reader
	logger *slog.Logger
}

// NewContinueWatchingService creates a new continue-watching service.
func NewContinueWatchingService(reader *records.Reader, logger *slog.Logger) *ContinueWatchingService {
	return &ContinueWatchingService{
		reader: reader,
		logger: logger,
	}
}

// ContinueWatching snapshots the three records and reconciles them.
// It never fails; unreadable records simply contribute nothing.
func (s *ContinueWatchingService) ContinueWatching(ctx context.Context) []domain.ResumeEntry {
	snap := s.reader.Snapshot(ctx)
	entries := resume.Reconcile(snap.History, snap.LastVisited, snap.Playback)

	metrics.ResumeEntries.Observe(float64(len(entries)))
	s.logger.Debug("Reconciled continue watching",
		"titles", len(snap.History),
		"visited", len(snap.LastVisited),
		"progress", len(snap.Playback),
		"entries", len(entries),
	)

	return entries
}
