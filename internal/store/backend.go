package store

import "context"

// SlotStore is implemented by every slot backend: badger (this package),
// sqlite, Redis and the JSON file directory.
type SlotStore interface {
	GetSlot(ctx context.Context, slot string) ([]byte, error)
	PutSlot(ctx context.Context, slot string, data []byte) error
	DeleteSlot(ctx context.Context, slot string) error
	ListSlots(ctx context.Context) ([]SlotInfo, error)
	Close() error
}

var _ SlotStore = (*Store)(nil)
