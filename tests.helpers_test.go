package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testBooks returns a small catalog covering discounted books, a book
// without category and shared authors.
func testBooks() []Book {
	return []Book{
		{ID: 1, Title: "The Fund", Author: "Rob Copeland", Price: decimal.RequireFromString("19.99"), Discount: decimal.RequireFromString("15.99"), Rating: 4.5, Category: "Finance", Collection: CollectionTrending},
		{ID: 2, Title: "Think Again", Author: "Adam Grant", Price: decimal.RequireFromString("24.99"), Discount: decimal.RequireFromString("10.99"), Rating: 4.2, Category: "Psychology", Collection: CollectionTrending},
		{ID: 3, Title: "Originals", Author: "Adam Grant", Price: decimal.RequireFromString("18.00"), Rating: 3.9, Category: "Psychology"},
		{ID: 4, Title: "1984", Author: "George Orwell", Price: decimal.RequireFromString("12.99"), Discount: decimal.RequireFromString("6.99"), Rating: 4.8, Category: "Fiction", Collection: CollectionUpcoming},
		{ID: 5, Title: "animal farm", Author: "George Orwell", Price: decimal.RequireFromString("9.50"), Rating: 4.1},
	}
}

func testBook(t *testing.T, id int) Book {
	t.Helper()
	for _, b := range testBooks() {
		if b.ID == id {
			return b
		}
	}
	t.Fatalf("unknown test book %d", id)
	return Book{}
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := NewCatalog(testBooks())
	require.NoError(t, err)
	return catalog
}

func newTestSessionManager(storage SlotStorage, clock *MockClocker) *SessionManager {
	return NewSessionManager(
		zap.NewNop(),
		&SessionConfig{IdleTimeout: 30 * time.Minute, SweepInterval: time.Minute},
		storage,
		DefaultPricing(),
		clock,
		NewMockUIDHandler("0001", true),
	)
}

func validShipping() *ShippingDetails {
	return &ShippingDetails{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "+44 20 7946 0000",
		Address:   "12 St James's Square",
		City:      "London",
		ZipCode:   "SW1Y 4JH",
		Country:   "United Kingdom",
	}
}

func validCardPayment() *PaymentForm {
	return &PaymentForm{
		Method:     PaymentVisa,
		CardNumber: "4111 1111 1111 1111",
		CardName:   "Ada Lovelace",
		Expiry:     "12/30",
		CVV:        "123",
	}
}

// newTestOrderArchive returns an in-memory archive kept in a map.
func newTestOrderArchive() *MockOrderArchive {
	var mu sync.Mutex
	orders := make(map[string]Order)
	return &MockOrderArchive{
		AddFunc: func(ctx context.Context, order Order) error {
			mu.Lock()
			defer mu.Unlock()
			orders[order.ID] = order
			return nil
		},
		GetOneFunc: func(ctx context.Context, id string) (Order, error) {
			mu.Lock()
			defer mu.Unlock()
			order, ok := orders[id]
			if !ok {
				return Order{}, ErrOrderNotFound
			}
			return order, nil
		},
		GetAllFunc: func(ctx context.Context) ([]Order, error) {
			mu.Lock()
			defer mu.Unlock()
			all := make([]Order, 0, len(orders))
			for _, order := range orders {
				all = append(all, order)
			}
			return all, nil
		},
	}
}
