package main

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// FavoritesStore holds the favorite books of one session. Mutations
// persist then publish TopicFavoritesChanged.
type FavoritesStore struct {
	mu       sync.Mutex
	slot     *persistentSlot[[]Book]
	notifier Notifier
}

// NewFavoritesStore provides the favorites of the session identified by namespace.
func NewFavoritesStore(logger *zap.Logger, storage SlotStorage, notifier Notifier, namespace string) *FavoritesStore {
	return &FavoritesStore{
		slot:     newPersistentSlot[[]Book](logger, storage, namespace, SlotFavorites),
		notifier: notifier,
	}
}

// List returns the favorite books.
func (fs *FavoritesStore) List(ctx context.Context) ([]Book, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.load(ctx)
}

func (fs *FavoritesStore) load(ctx context.Context) ([]Book, error) {
	books, err := fs.slot.load(ctx)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// Toggle removes the book when it is a favorite and adds it otherwise.
// It reports whether the book is a favorite after the call.
func (fs *FavoritesStore) Toggle(ctx context.Context, book Book) (bool, error) {
	fs.mu.Lock()
	books, err := fs.load(ctx)
	if err != nil {
		fs.mu.Unlock()
		return false, err
	}
	favorite := true
	if i := indexOfBook(books, book.ID); i >= 0 {
		books = slices.Delete(books, i, i+1)
		favorite = false
	} else {
		books = append(books, book)
	}
	err = fs.slot.save(ctx, books)
	fs.mu.Unlock()
	if err != nil {
		return false, err
	}
	fs.notifier.Publish(TopicFavoritesChanged)
	return favorite, nil
}

// Remove deletes book id from the favorites. It reports whether it was present.
func (fs *FavoritesStore) Remove(ctx context.Context, id int) (bool, error) {
	fs.mu.Lock()
	books, err := fs.load(ctx)
	if err != nil {
		fs.mu.Unlock()
		return false, err
	}
	i := indexOfBook(books, id)
	if i < 0 {
		fs.mu.Unlock()
		return false, nil
	}
	books = slices.Delete(books, i, i+1)
	err = fs.slot.save(ctx, books)
	fs.mu.Unlock()
	if err != nil {
		return false, err
	}
	fs.notifier.Publish(TopicFavoritesChanged)
	return true, nil
}

// Contains reports whether book id is a favorite.
func (fs *FavoritesStore) Contains(ctx context.Context, id int) (bool, error) {
	books, err := fs.List(ctx)
	if err != nil {
		return false, err
	}
	return indexOfBook(books, id) >= 0, nil
}

func indexOfBook(books []Book, id int) int {
	return slices.IndexFunc(books, func(b Book) bool {
		return b.ID == id
	})
}
