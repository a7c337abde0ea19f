// Package main prints the stored record slots and the continue-watching list
// derived from them.
//
// Usage:
//
//	go run ./cmd/dbinspect -backend sqlite -path ~/ContinueWatching/slots.db
//	go run ./cmd/dbinspect -backend redis -redis-url redis://localhost:6379/0
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/listenupapp/continue-watching/internal/config"
	"github.com/listenupapp/continue-watching/internal/di/providers"
	"github.com/listenupapp/continue-watching/internal/layout"
	"github.com/listenupapp/continue-watching/internal/records"
	"github.com/listenupapp/continue-watching/internal/resume"
)

var (
	backend  = flag.String("backend", config.BackendBadger, "Storage backend: badger, sqlite, file or redis")
	path     = flag.String("path", "", "Storage path (default: ~/ContinueWatching/<backend>)")
	redisURL = flag.String("redis-url", "", "Redis URL for the redis backend")
	width    = flag.Float64("width", 1280, "Viewport width used to report the slide count")
)

func main() {
	flag.Parse()

	cfg, err := config.Load([]string{
		"-storage-backend", *backend,
		"-storage-path", *path,
		"-redis-url", *redisURL,
	})
	if err != nil {
		log.Fatalf("Failed to resolve storage: %v", err)
	}

	ctx := context.Background()

	slots, err := providers.OpenSlotStore(ctx, cfg.Storage, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer slots.Close()

	fmt.Println("=== Slot Inspection ===")
	fmt.Printf("Backend:  %s\nLocation: %s\n\n", cfg.Storage.Backend, location(cfg.Storage))

	infos, err := slots.ListSlots(ctx)
	if err != nil {
		log.Fatalf("Failed to list slots: %v", err)
	}

	slotTable := newTable("Slot", "Bytes", "Updated", "Read")
	slotTable.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	present := make(map[string]bool, len(infos))
	for _, info := range infos {
		present[info.Name] = true
		updated := "-"
		if !info.UpdatedAt.IsZero() {
			updated = info.UpdatedAt.Format(time.RFC3339)
		}
		read := ""
		if records.IsRecordSlot(info.Name) {
			read = "yes"
		}
		slotTable.AppendRow(table.Row{info.Name, info.Size, updated, read})
	}
	for _, name := range records.Slots {
		if !present[name] {
			slotTable.AppendRow(table.Row{name, "-", "-", "missing"})
		}
	}
	fmt.Println(slotTable.Render())

	snap := records.NewReader(slots, nil).Snapshot(ctx)
	entries := resume.Reconcile(snap.History, snap.LastVisited, snap.Playback)

	fmt.Println()
	fmt.Printf("=== Continue Watching (%d entries, %d per view at %.0fpx) ===\n",
		len(entries), layout.SlidesPerView(*width), *width)

	entryTable := newTable("#", "Title", "Episode", "Display", "Progress", "Last Visit")
	entryTable.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	for i, e := range entries {
		visit := "-"
		if ts := snap.LastVisited.TimestampOf(e.TitleID); ts != 0 {
			visit = time.UnixMilli(ts).Format(time.DateTime)
		}
		progress := strconv.FormatFloat(e.PlaybackPercentage, 'f', 0, 64) + "%"
		if e.VisualPercentage() != e.PlaybackPercentage {
			progress += " (bar " + strconv.FormatFloat(e.VisualPercentage(), 'f', 0, 64) + "%)"
		}
		entryTable.AppendRow(table.Row{i + 1, e.TitleID, e.Episode.Number, e.DisplayTitle, progress, visit})
	}
	fmt.Println(entryTable.Render())
}

func newTable(headers ...any) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row(headers))
	return tw
}

func location(cfg config.StorageConfig) string {
	if cfg.Backend == config.BackendRedis {
		return cfg.RedisURL + " (prefix " + cfg.RedisPrefix + ")"
	}
	return cfg.Path
}
