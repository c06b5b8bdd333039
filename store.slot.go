package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// persistentSlot reads and writes one JSON encoded value of a session.
// A missing slot reads as the zero value. An unparsable slot reads as the
// zero value as well and is reported with a warning, never as an error.
type persistentSlot[T any] struct {
	logger    *zap.Logger
	storage   SlotStorage
	namespace string
	name      string
}

func newPersistentSlot[T any](logger *zap.Logger, storage SlotStorage, namespace, name string) *persistentSlot[T] {
	return &persistentSlot[T]{
		logger:    logger,
		storage:   storage,
		namespace: namespace,
		name:      name,
	}
}

// load returns the decoded slot value. Only storage failures are errors.
func (ps *persistentSlot[T]) load(ctx context.Context) (T, error) {
	var value T
	raw, err := ps.storage.Load(ctx, ps.namespace, ps.name)
	if errors.Is(err, ErrSlotNotFound) {
		return value, nil
	}
	if err != nil {
		return value, fmt.Errorf("failed to load %s: %w", ps.name, err)
	}
	if err = json.Unmarshal([]byte(raw), &value); err != nil {
		ps.logger.Warn("store: malformed slot value, using empty value",
			zap.String("session.id", ps.namespace),
			zap.String("slot", ps.name),
			zap.Error(err),
		)
		var empty T
		return empty, nil
	}
	return value, nil
}

// save encodes and persists the full value.
func (ps *persistentSlot[T]) save(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ps.name, err)
	}
	if err = ps.storage.Save(ctx, ps.namespace, ps.name, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", ps.name, err)
	}
	return nil
}

// clear removes the slot.
func (ps *persistentSlot[T]) clear(ctx context.Context) error {
	if err := ps.storage.Delete(ctx, ps.namespace, ps.name); err != nil {
		return fmt.Errorf("failed to delete %s: %w", ps.name, err)
	}
	return nil
}
