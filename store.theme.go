package main

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
)

// ThemeStore holds the dark mode preference of one session. The slot holds
// the plain "true" or "false" string, not a JSON document.
type ThemeStore struct {
	logger    *zap.Logger
	storage   SlotStorage
	namespace string
}

// NewThemeStore provides the theme preference of the session identified by namespace.
func NewThemeStore(logger *zap.Logger, storage SlotStorage, namespace string) *ThemeStore {
	return &ThemeStore{logger: logger, storage: storage, namespace: namespace}
}

// DarkMode returns the stored preference. Missing or unreadable values mean light mode.
func (ts *ThemeStore) DarkMode(ctx context.Context) (bool, error) {
	raw, err := ts.storage.Load(ctx, ts.namespace, SlotDarkMode)
	if errors.Is(err, ErrSlotNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		ts.logger.Warn("store: malformed slot value, using light mode",
			zap.String("session.id", ts.namespace),
			zap.String("slot", SlotDarkMode),
			zap.Error(err),
		)
		return false, nil
	}
	return enabled, nil
}

// SetDarkMode persists the preference.
func (ts *ThemeStore) SetDarkMode(ctx context.Context, enabled bool) error {
	return ts.storage.Save(ctx, ts.namespace, SlotDarkMode, strconv.FormatBool(enabled))
}

// Toggle flips the preference and returns the new value.
func (ts *ThemeStore) Toggle(ctx context.Context) (bool, error) {
	enabled, err := ts.DarkMode(ctx)
	if err != nil {
		return false, err
	}
	return !enabled, ts.SetDarkMode(ctx, !enabled)
}
