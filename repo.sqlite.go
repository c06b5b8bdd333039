package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS slots (
		namespace  TEXT NOT NULL,
		slot       TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (namespace, slot)
	)
`

var _ SlotStorage = (*sqliteSlotStorage)(nil)

type sqliteSlotStorage struct {
	logger *zap.Logger
	db     *sql.DB
	clock  Clocker
}

// GetSQLiteClient opens the sqlite database and ensures the slots table exists.
func GetSQLiteClient(config *Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite", config.SQLite.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create slots table: %w", err)
	}
	return db, nil
}

// NewSQLiteSlotStorage provides an instance of sqlite-based slot storage.
func NewSQLiteSlotStorage(logger *zap.Logger, db *sql.DB, clock Clocker) SlotStorage {
	return &sqliteSlotStorage{
		logger: logger,
		db:     db,
		clock:  clock,
	}
}

// Load retrieves the raw value of a session slot.
func (ss *sqliteSlotStorage) Load(ctx context.Context, namespace, slot string) (string, error) {
	query := `
		SELECT value
		FROM slots
		WHERE namespace = ? AND slot = ?
	`
	var value string
	err := ss.db.QueryRowContext(ctx, query, namespace, slot).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSlotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: failed to load slot %s: %w", slot, err)
	}
	return value, nil
}

// Save upserts the slot value and records the update time.
func (ss *sqliteSlotStorage) Save(ctx context.Context, namespace, slot, value string) error {
	query := `
		INSERT INTO slots (namespace, slot, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, slot) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	_, err := ss.db.ExecContext(ctx, query, namespace, slot, value, ss.clock.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	if err != nil {
		return fmt.Errorf("sqlite: failed to save slot %s: %w", slot, err)
	}
	return nil
}

// Delete removes a session slot.
func (ss *sqliteSlotStorage) Delete(ctx context.Context, namespace, slot string) error {
	query := `
		DELETE FROM slots
		WHERE namespace = ? AND slot = ?
	`
	if _, err := ss.db.ExecContext(ctx, query, namespace, slot); err != nil {
		return fmt.Errorf("sqlite: failed to delete slot %s: %w", slot, err)
	}
	return nil
}

func (ss *sqliteSlotStorage) Close() error {
	return ss.db.Close()
}
