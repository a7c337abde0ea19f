// Package redisstore keeps slots in Redis, for deployments where several
// server instances share one viewer's records.
//
// Each slot is a hash under <prefix><name> with the fields data and
// updated_at (epoch millis).
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/listenupapp/continue-watching/internal/store"
)

// DefaultPrefix namespaces slot keys.
const DefaultPrefix = "cw:slot:"

const (
	fieldData      = "data"
	fieldUpdatedAt = "updated_at"
	scanCount      = 100
)

var _ store.SlotStore = (*Store)(nil)

// Store provides Redis-backed slot persistence.
type Store struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// Open parses url, connects and pings the server.
func Open(ctx context.Context, url, prefix string, logger *slog.Logger) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if logger != nil {
		logger.Info("Redis slot store connected", "addr", opts.Addr, "db", opts.DB, "prefix", prefix)
	}
	return New(client, prefix, logger), nil
}

// New wraps an existing client. An empty prefix selects DefaultPrefix.
func New(client redis.UniversalClient, prefix string, logger *slog.Logger) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix, logger: logger, now: time.Now}
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// GetSlot returns the raw contents of a slot.
func (s *Store) GetSlot(ctx context.Context, slot string) ([]byte, error) {
	data, err := s.client.HGet(ctx, s.prefix+slot, fieldData).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get slot %q: %w", slot, err)
	}
	return data, nil
}

// PutSlot replaces the contents of a slot.
func (s *Store) PutSlot(ctx context.Context, slot string, data []byte) error {
	if slot == "" {
		return store.ErrInvalidInput.WithMessage("slot name is required")
	}
	if data == nil {
		data = []byte{}
	}

	err := s.client.HSet(ctx, s.prefix+slot,
		fieldData, data,
		fieldUpdatedAt, s.now().UnixMilli(),
	).Err()
	if err != nil {
		return fmt.Errorf("put slot %q: %w", slot, err)
	}
	return nil
}

// DeleteSlot removes a slot. Deleting a missing slot is not an error.
func (s *Store) DeleteSlot(ctx context.Context, slot string) error {
	if err := s.client.Del(ctx, s.prefix+slot).Err(); err != nil {
		return fmt.Errorf("delete slot %q: %w", slot, err)
	}
	return nil
}

// ListSlots returns every stored slot ordered by name.
func (s *Store) ListSlots(ctx context.Context) ([]store.SlotInfo, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan slots: %w", err)
	}
	slices.Sort(keys)

	sizes := make([]*redis.IntCmd, len(keys))
	stamps := make([]*redis.StringCmd, len(keys))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			sizes[i] = pipe.HStrLen(ctx, key, fieldData)
			stamps[i] = pipe.HGet(ctx, key, fieldUpdatedAt)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read slot info: %w", err)
	}

	slots := make([]store.SlotInfo, 0, len(keys))
	for i, key := range keys {
		info := store.SlotInfo{
			Name: strings.TrimPrefix(key, s.prefix),
			Size: int(sizes[i].Val()),
		}
		if ms, err := strconv.ParseInt(stamps[i].Val(), 10, 64); err == nil {
			info.UpdatedAt = time.UnixMilli(ms)
		}
		slots = append(slots, info)
	}
	return slots, nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
