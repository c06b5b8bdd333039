package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestFavoritesStore_ToggleTwice ensures two toggles restore the original membership.
func TestFavoritesStore_ToggleTwice(t *testing.T) {
	ctx := context.Background()
	for _, b := range testBooks() {
		notifier := newRecordingNotifier()
		fs := NewFavoritesStore(zap.NewNop(), NewMemorySlotStorage(), notifier, testNamespace)
		_, err := fs.Toggle(ctx, testBook(t, 1))
		require.NoError(t, err)
		before, err := fs.Contains(ctx, b.ID)
		require.NoError(t, err)

		first, err := fs.Toggle(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, !before, first)
		second, err := fs.Toggle(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, before, second)

		after, err := fs.Contains(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after, "book %d", b.ID)
		assert.Equal(t, 3, notifier.count(TopicFavoritesChanged))
	}
}

// TestFavoritesStore_Remove ensures removal only signals when the book was a favorite.
func TestFavoritesStore_Remove(t *testing.T) {
	ctx := context.Background()
	notifier := newRecordingNotifier()
	fs := NewFavoritesStore(zap.NewNop(), NewMemorySlotStorage(), notifier, testNamespace)

	found, err := fs.Remove(ctx, 2)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, notifier.count(TopicFavoritesChanged))

	_, err = fs.Toggle(ctx, testBook(t, 2))
	require.NoError(t, err)
	_, err = fs.Toggle(ctx, testBook(t, 3))
	require.NoError(t, err)

	found, err = fs.Remove(ctx, 2)
	require.NoError(t, err)
	assert.True(t, found)

	books, err := fs.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 3, books[0].ID)
	assert.Equal(t, 3, notifier.count(TopicFavoritesChanged))
}

// TestFavoritesStore_MalformedSlot ensures an unparsable slot reads as no favorites.
func TestFavoritesStore_MalformedSlot(t *testing.T) {
	ctx := context.Background()
	storage := NewMemorySlotStorage()
	require.NoError(t, storage.Save(ctx, testNamespace, SlotFavorites, `{"id":1}`))
	fs := NewFavoritesStore(zap.NewNop(), storage, NewBus(), testNamespace)

	books, err := fs.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, books)
}

// TestThemeStore ensures the preference is stored as a plain boolean string.
func TestThemeStore(t *testing.T) {
	ctx := context.Background()
	storage := NewMemorySlotStorage()
	ts := NewThemeStore(zap.NewNop(), storage, testNamespace)

	dark, err := ts.DarkMode(ctx)
	require.NoError(t, err)
	assert.False(t, dark)

	dark, err = ts.Toggle(ctx)
	require.NoError(t, err)
	assert.True(t, dark)

	raw, err := storage.Load(ctx, testNamespace, SlotDarkMode)
	require.NoError(t, err)
	assert.Equal(t, "true", raw)

	require.NoError(t, ts.SetDarkMode(ctx, false))
	raw, err = storage.Load(ctx, testNamespace, SlotDarkMode)
	require.NoError(t, err)
	assert.Equal(t, "false", raw)

	require.NoError(t, storage.Save(ctx, testNamespace, SlotDarkMode, "maybe"))
	dark, err = ts.DarkMode(ctx)
	assert.NoError(t, err)
	assert.False(t, dark)
}
