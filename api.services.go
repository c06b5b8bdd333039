package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

type StorefrontServiceProvider interface {
	Catalog() CatalogProvider
	Session(id string) *Session
	SessionsCount() int
	AddToCart(ctx context.Context, s *Session, bookID int) (Book, AddResult, error)
	ToggleFavorite(ctx context.Context, s *Session, bookID int) (Book, bool, error)
	PlaceOrder(ctx context.Context, s *Session) (Order, error)
	GetOrder(ctx context.Context, s *Session, orderID string) (Order, error)
}

type StorefrontService struct {
	logger   *zap.Logger
	catalog  CatalogProvider
	sessions SessionProvider
	queue    Queuer
	archive  OrderArchive
}

func NewStorefrontService(logger *zap.Logger, catalog CatalogProvider, sessions SessionProvider, queue Queuer, archive OrderArchive) StorefrontServiceProvider {
	return &StorefrontService{
		logger:   logger,
		catalog:  catalog,
		sessions: sessions,
		queue:    queue,
		archive:  archive,
	}
}

func (ss *StorefrontService) Catalog() CatalogProvider {
	return ss.catalog
}

func (ss *StorefrontService) Session(id string) *Session {
	return ss.sessions.Get(id)
}

// SessionsCount returns the number of live sessions.
func (ss *StorefrontService) SessionsCount() int {
	return ss.sessions.Len()
}

// AddToCart adds the catalog book to the session cart.
func (ss *StorefrontService) AddToCart(ctx context.Context, s *Session, bookID int) (Book, AddResult, error) {
	book, ok := ss.catalog.GetByID(bookID)
	if !ok {
		return book, Added, ErrBookNotFound
	}
	result, err := s.Cart.Add(ctx, book)
	return book, result, err
}

// ToggleFavorite flips the favorite status of the catalog book.
func (ss *StorefrontService) ToggleFavorite(ctx context.Context, s *Session, bookID int) (Book, bool, error) {
	book, ok := ss.catalog.GetByID(bookID)
	if !ok {
		return book, false, ErrBookNotFound
	}
	favorite, err := s.Favorites.Toggle(ctx, book)
	return book, favorite, err
}

// PlaceOrder confirms the session checkout and hands the order over to the archive queue.
// A queue failure is logged but does not fail the order, which is already placed.
func (ss *StorefrontService) PlaceOrder(ctx context.Context, s *Session) (Order, error) {
	order, err := s.Checkout.Confirm(ctx)
	if err != nil && order.ID == "" {
		return order, err
	}
	if qerr := ss.queue.Push(ctx, OrdersQueue, order); qerr != nil {
		ss.logger.Error("service: failed to push order to queue", zap.String("qid", OrdersQueue), zap.String("order.id", order.ID), zap.Error(qerr))
	}
	return order, err
}

// GetOrder returns an archived order of the session.
func (ss *StorefrontService) GetOrder(ctx context.Context, s *Session, orderID string) (Order, error) {
	order, err := ss.archive.GetOne(ctx, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		return order, err
	}
	if err != nil {
		return order, fmt.Errorf("failed to get order %s: %w", orderID, err)
	}
	if order.Session != s.ID {
		return Order{}, ErrOrderNotFound
	}
	return order, nil
}
