package main

import (
	"context"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartStore holds the cart entries of one session. Every mutation persists
// the full entry list and then publishes TopicCartChanged. No-op calls
// neither persist nor publish.
type CartStore struct {
	mu       sync.Mutex
	slot     *persistentSlot[[]CartEntry]
	notifier Notifier
}

// NewCartStore provides the cart of the session identified by namespace.
func NewCartStore(logger *zap.Logger, storage SlotStorage, notifier Notifier, namespace string) *CartStore {
	return &CartStore{
		slot:     newPersistentSlot[[]CartEntry](logger, storage, namespace, SlotCart),
		notifier: notifier,
	}
}

// Items returns the current entries in insertion order.
func (cs *CartStore) Items(ctx context.Context) ([]CartEntry, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.load(ctx)
}

func (cs *CartStore) load(ctx context.Context) ([]CartEntry, error) {
	entries, err := cs.slot.load(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []CartEntry{}
	}
	return entries, nil
}

// Add inserts the book with quantity 1. A book already in the cart is left
// untouched and AlreadyInCart is reported.
func (cs *CartStore) Add(ctx context.Context, book Book) (AddResult, error) {
	cs.mu.Lock()
	entries, err := cs.load(ctx)
	if err != nil {
		cs.mu.Unlock()
		return Added, err
	}
	if indexOfEntry(entries, book.ID) >= 0 {
		cs.mu.Unlock()
		return AlreadyInCart, nil
	}
	entries = append(entries, CartEntry{Book: book, Quantity: 1})
	err = cs.slot.save(ctx, entries)
	cs.mu.Unlock()
	if err != nil {
		return Added, err
	}
	cs.notifier.Publish(TopicCartChanged)
	return Added, nil
}

// SetQuantity updates the quantity of the entry of book id. A quantity
// lower than 1 removes the entry. It reports whether the book is in the cart.
func (cs *CartStore) SetQuantity(ctx context.Context, id, quantity int) (bool, error) {
	if quantity <= 0 {
		return cs.Remove(ctx, id)
	}
	cs.mu.Lock()
	entries, err := cs.load(ctx)
	if err != nil {
		cs.mu.Unlock()
		return false, err
	}
	i := indexOfEntry(entries, id)
	if i < 0 || entries[i].Quantity == quantity {
		cs.mu.Unlock()
		return i >= 0, nil
	}
	entries[i].Quantity = quantity
	err = cs.slot.save(ctx, entries)
	cs.mu.Unlock()
	if err != nil {
		return false, err
	}
	cs.notifier.Publish(TopicCartChanged)
	return true, nil
}

// Remove deletes the entry of book id. It reports whether an entry existed.
func (cs *CartStore) Remove(ctx context.Context, id int) (bool, error) {
	cs.mu.Lock()
	entries, err := cs.load(ctx)
	if err != nil {
		cs.mu.Unlock()
		return false, err
	}
	i := indexOfEntry(entries, id)
	if i < 0 {
		cs.mu.Unlock()
		return false, nil
	}
	entries = slices.Delete(entries, i, i+1)
	err = cs.slot.save(ctx, entries)
	cs.mu.Unlock()
	if err != nil {
		return false, err
	}
	cs.notifier.Publish(TopicCartChanged)
	return true, nil
}

// Clear empties the cart. Clearing an empty cart is a no-op.
func (cs *CartStore) Clear(ctx context.Context) error {
	cs.mu.Lock()
	entries, err := cs.load(ctx)
	if err != nil {
		cs.mu.Unlock()
		return err
	}
	if len(entries) == 0 {
		cs.mu.Unlock()
		return nil
	}
	err = cs.slot.save(ctx, []CartEntry{})
	cs.mu.Unlock()
	if err != nil {
		return err
	}
	cs.notifier.Publish(TopicCartChanged)
	return nil
}

// Contains reports whether book id is in the cart.
func (cs *CartStore) Contains(ctx context.Context, id int) (bool, error) {
	entries, err := cs.Items(ctx)
	if err != nil {
		return false, err
	}
	return indexOfEntry(entries, id) >= 0, nil
}

// Total returns the sum of the entries line totals rounded to cents.
func (cs *CartStore) Total(ctx context.Context) (decimal.Decimal, error) {
	entries, err := cs.Items(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return CartTotal(entries), nil
}

// ItemCount returns the sum of quantities, as displayed by the cart badge.
func (cs *CartStore) ItemCount(ctx context.Context) (int, error) {
	entries, err := cs.Items(ctx)
	if err != nil {
		return 0, err
	}
	return CartItemCount(entries), nil
}

// EntryCount returns the number of distinct books in the cart.
func (cs *CartStore) EntryCount(ctx context.Context) (int, error) {
	entries, err := cs.Items(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// CartTotal sums effective price times quantity and rounds to cents.
func CartTotal(entries []CartEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.LineTotal())
	}
	return Money(total)
}

// CartItemCount sums the quantities of entries.
func CartItemCount(entries []CartEntry) int {
	count := 0
	for _, e := range entries {
		count += e.Quantity
	}
	return count
}

func indexOfEntry(entries []CartEntry, id int) int {
	return slices.IndexFunc(entries, func(e CartEntry) bool {
		return e.ID == id
	})
}
