package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/continue-watching/internal/store"
)

func TestStore_Slots(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.GetSlot(ctx, "watched-episodes")
	assert.ErrorIs(t, err, store.ErrSlotNotFound)

	require.NoError(t, s.PutSlot(ctx, "watched-episodes", []byte(`{"x":[]}`)))
	raw, err := os.ReadFile(filepath.Join(dir, "watched-episodes.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"x":[]}`, string(raw))

	got, err := s.GetSlot(ctx, "watched-episodes")
	require.NoError(t, err)
	assert.Equal(t, `{"x":[]}`, string(got))

	// Stray files are not slots.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.json"), []byte("{}"), 0o644))

	slots, err := s.ListSlots(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "watched-episodes", slots[0].Name)
	assert.Equal(t, 8, slots[0].Size)

	require.NoError(t, s.DeleteSlot(ctx, "watched-episodes"))
	require.NoError(t, s.DeleteSlot(ctx, "watched-episodes"))
	_, err = s.GetSlot(ctx, "watched-episodes")
	assert.ErrorIs(t, err, store.ErrSlotNotFound)
}

func TestStore_RejectsPathTraversal(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	for _, slot := range []string{"", "../escape", "a/b", ".hidden"} {
		_, err := s.GetSlot(context.Background(), slot)
		assert.Error(t, err, "slot %q", slot)
		assert.NotErrorIs(t, err, store.ErrSlotNotFound, "slot %q", slot)
	}
}

func TestStore_SlotForPath(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, nil)
	require.NoError(t, err)

	slot, ok := s.SlotForPath(filepath.Join(dir, "all_episode_times.json"))
	assert.True(t, ok)
	assert.Equal(t, "all_episode_times", slot)

	_, ok = s.SlotForPath(filepath.Join(dir, "all_episode_times.txt"))
	assert.False(t, ok)

	_, ok = s.SlotForPath(filepath.Join(dir, "nested", "x.json"))
	assert.False(t, ok)
}
