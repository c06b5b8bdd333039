package main

import (
	"context"
	"sync"
)

var _ SlotStorage = (*memorySlotStorage)(nil)

type memorySlotStorage struct {
	mu    sync.RWMutex
	slots map[string]map[string]string
}

// NewMemorySlotStorage provides an in-process slot storage. Its content
// does not survive a restart.
func NewMemorySlotStorage() SlotStorage {
	return &memorySlotStorage{slots: make(map[string]map[string]string)}
}

// Load returns the value of the slot or ErrSlotNotFound.
func (ms *memorySlotStorage) Load(_ context.Context, namespace, slot string) (string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	value, ok := ms.slots[namespace][slot]
	if !ok {
		return "", ErrSlotNotFound
	}
	return value, nil
}

// Save creates or replaces the slot value.
func (ms *memorySlotStorage) Save(_ context.Context, namespace, slot, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.slots[namespace] == nil {
		ms.slots[namespace] = make(map[string]string)
	}
	ms.slots[namespace][slot] = value
	return nil
}

// Delete removes the slot. Deleting a missing slot is not an error.
func (ms *memorySlotStorage) Delete(_ context.Context, namespace, slot string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.slots[namespace], slot)
	if len(ms.slots[namespace]) == 0 {
		delete(ms.slots, namespace)
	}
	return nil
}

func (ms *memorySlotStorage) Close() error {
	return nil
}
