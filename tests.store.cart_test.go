package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testNamespace = "s:test"

func newTestCartStore(storage SlotStorage, notifier Notifier) *CartStore {
	return NewCartStore(zap.NewNop(), storage, notifier, testNamespace)
}

// TestCartStore_Add ensures a new book enters with quantity 1 and a second
// add leaves the cart untouched without signal.
func TestCartStore_Add(t *testing.T) {
	ctx := context.Background()
	notifier := newRecordingNotifier()
	cs := newTestCartStore(NewMemorySlotStorage(), notifier)

	result, err := cs.Add(ctx, testBook(t, 1))
	require.NoError(t, err)
	assert.Equal(t, Added, result)
	assert.Equal(t, 1, notifier.count(TopicCartChanged))

	result, err = cs.Add(ctx, testBook(t, 1))
	require.NoError(t, err)
	assert.Equal(t, AlreadyInCart, result)
	assert.Equal(t, 1, notifier.count(TopicCartChanged))

	entries, err := cs.Items(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Quantity)
}

// TestCartStore_Total ensures line totals use the sale price when the
// book is discounted and the list price otherwise.
func TestCartStore_Total(t *testing.T) {
	ctx := context.Background()
	cs := newTestCartStore(NewMemorySlotStorage(), NewBus())

	discounted := Book{ID: 10, Title: "A", Author: "X", Price: decimal.RequireFromString("10.99"), Discount: decimal.RequireFromString("7.99")}
	full := Book{ID: 11, Title: "B", Author: "Y", Price: decimal.NewFromInt(20)}
	_, err := cs.Add(ctx, discounted)
	require.NoError(t, err)
	_, err = cs.Add(ctx, full)
	require.NoError(t, err)
	_, err = cs.SetQuantity(ctx, 10, 2)
	require.NoError(t, err)

	total, err := cs.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, "35.98", total.StringFixed(2))

	items, err := cs.ItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, items)

	entries, err := cs.EntryCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, entries)
}

// TestCartStore_SingleEntryPerBook ensures any sequence of add and
// quantity updates keeps a single entry for a book.
func TestCartStore_SingleEntryPerBook(t *testing.T) {
	ctx := context.Background()
	cs := newTestCartStore(NewMemorySlotStorage(), NewBus())
	book := testBook(t, 2)

	ops := []func() error{
		func() error { _, err := cs.Add(ctx, book); return err },
		func() error { _, err := cs.SetQuantity(ctx, book.ID, 4); return err },
		func() error { _, err := cs.Add(ctx, book); return err },
		func() error { _, err := cs.SetQuantity(ctx, book.ID, 2); return err },
		func() error { _, err := cs.Add(ctx, book); return err },
	}
	for _, op := range ops {
		require.NoError(t, op())
		entries, err := cs.Items(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	}

	entries, err := cs.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, entries[0].Quantity)
}

// TestCartStore_QuantityFloor ensures zero or negative quantities remove the entry.
func TestCartStore_QuantityFloor(t *testing.T) {
	for _, quantity := range []int{0, -5} {
		ctx := context.Background()
		cs := newTestCartStore(NewMemorySlotStorage(), NewBus())
		_, err := cs.Add(ctx, testBook(t, 3))
		require.NoError(t, err)

		found, err := cs.SetQuantity(ctx, 3, quantity)
		require.NoError(t, err)
		assert.True(t, found)

		entries, err := cs.Items(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries, "quantity %d", quantity)
	}
}

// TestCartStore_NoOps ensures operations on absent books neither persist nor signal.
func TestCartStore_NoOps(t *testing.T) {
	ctx := context.Background()
	saves := 0
	storage := NewMemorySlotStorage()
	mock := &MockSlotStorage{
		LoadFunc: storage.Load,
		SaveFunc: func(ctx context.Context, namespace, slot, value string) error {
			saves++
			return storage.Save(ctx, namespace, slot, value)
		},
		DeleteFunc: storage.Delete,
	}
	notifier := newRecordingNotifier()
	cs := newTestCartStore(mock, notifier)

	found, err := cs.SetQuantity(ctx, 99, 3)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = cs.Remove(ctx, 99)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cs.Clear(ctx))

	assert.Equal(t, 0, saves)
	assert.Equal(t, 0, notifier.count(TopicCartChanged))
}

// TestCartStore_RemoveAndClear ensures entries leave the cart and signals are sent.
func TestCartStore_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	notifier := newRecordingNotifier()
	cs := newTestCartStore(NewMemorySlotStorage(), notifier)
	for _, id := range []int{1, 2, 4} {
		_, err := cs.Add(ctx, testBook(t, id))
		require.NoError(t, err)
	}

	found, err := cs.Remove(ctx, 2)
	require.NoError(t, err)
	assert.True(t, found)

	contains, err := cs.Contains(ctx, 2)
	require.NoError(t, err)
	assert.False(t, contains)

	entries, err := cs.Items(ctx)
	require.NoError(t, err)
	ids := []int{}
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int{1, 4}, ids)

	require.NoError(t, cs.Clear(ctx))
	entries, err = cs.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 5, notifier.count(TopicCartChanged))
}

// TestCartStore_MalformedSlot ensures an unparsable slot reads as an empty cart.
func TestCartStore_MalformedSlot(t *testing.T) {
	ctx := context.Background()
	storage := NewMemorySlotStorage()
	require.NoError(t, storage.Save(ctx, testNamespace, SlotCart, "not json"))
	cs := newTestCartStore(storage, NewBus())

	var entries []CartEntry
	var err error
	assert.NotPanics(t, func() { entries, err = cs.Items(ctx) })
	assert.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	// the next mutation overwrites the broken value.
	_, err = cs.Add(ctx, testBook(t, 1))
	require.NoError(t, err)
	entries, err = cs.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// TestCartStore_StorageFailure ensures storage errors are reported to the caller.
func TestCartStore_StorageFailure(t *testing.T) {
	boom := errors.New("storage down")
	mock := &MockSlotStorage{
		LoadFunc: func(ctx context.Context, namespace, slot string) (string, error) {
			return "", boom
		},
	}
	notifier := newRecordingNotifier()
	cs := newTestCartStore(mock, notifier)

	_, err := cs.Add(context.Background(), testBook(t, 1))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, notifier.count(TopicCartChanged))
}

// TestCartStore_FanOutAfterPersistence ensures each subscriber is called once
// and observes the new state when it re-reads the store.
func TestCartStore_FanOutAfterPersistence(t *testing.T) {
	ctx := context.Background()
	bus := NewBus()
	cs := newTestCartStore(NewMemorySlotStorage(), bus)

	var firstCalls, secondCalls int
	var seen []CartEntry
	bus.Subscribe(TopicCartChanged, func() {
		firstCalls++
		entries, err := cs.Items(ctx)
		assert.NoError(t, err)
		seen = entries
	})
	bus.Subscribe(TopicCartChanged, func() { secondCalls++ })

	_, err := cs.Add(ctx, testBook(t, 4))
	require.NoError(t, err)

	assert.Equal(t, 1, firstCalls)
	assert.Equal(t, 1, secondCalls)
	require.Len(t, seen, 1)
	assert.Equal(t, 4, seen[0].ID)
}

// TestCartStore_PersistedLayout ensures the cartItems slot holds an array
// of books each carrying its quantity.
func TestCartStore_PersistedLayout(t *testing.T) {
	ctx := context.Background()
	storage := NewMemorySlotStorage()
	cs := newTestCartStore(storage, NewBus())
	_, err := cs.Add(ctx, testBook(t, 1))
	require.NoError(t, err)

	raw, err := storage.Load(ctx, testNamespace, SlotCart)
	require.NoError(t, err)
	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	require.Len(t, got, 1)

	want := map[string]interface{}{
		"id":         float64(1),
		"title":      "The Fund",
		"author":     "Rob Copeland",
		"price":      19.99,
		"discount":   15.99,
		"image":      "",
		"rating":     4.5,
		"category":   "Finance",
		"collection": CollectionTrending,
		"quantity":   float64(1),
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("persisted cart entry mismatch (-want +got):\n%s", diff)
	}
}
