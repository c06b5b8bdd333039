package main

import (
	"context"
	"errors"
)

// Persisted slot names of a session.
const (
	SlotCart       = "cartItems"
	SlotFavorites  = "favorites"
	SlotDarkMode   = "darkMode"
	SlotCheckout   = "checkout"
	SlotNewsletter = "newsletter"
)

// Supported slot storage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBolt   = "boltdb"
	BackendSQLite = "sqlite"
)

var ErrSlotNotFound = errors.New("slot not found")

// SlotStorage persists raw slot values addressed by a namespace (the session
// id) and a slot name. Values are opaque strings and are returned unchanged.
type SlotStorage interface {
	Load(ctx context.Context, namespace, slot string) (string, error)
	Save(ctx context.Context, namespace, slot, value string) error
	Delete(ctx context.Context, namespace, slot string) error
	Close() error
}
