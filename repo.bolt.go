package main

import (
	"context"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

var _ SlotStorage = (*boltSlotStorage)(nil)

type boltSlotStorage struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient setup the database and the slots and orders buckets then provides a ready to use client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{config.BoltDB.BucketName, config.BoltDB.OrdersBucketName} {
			if _, errB := tx.CreateBucketIfNotExists([]byte(name)); errB != nil {
				return fmt.Errorf("failed to create %s bucket: %v", name, errB)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up buckets: %v", err)
	}
	return db, nil
}

// NewBoltSlotStorage provides an instance of bolt-based slot storage. Each
// session owns a nested bucket under the configured slots bucket.
func NewBoltSlotStorage(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) SlotStorage {
	return &boltSlotStorage{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the underlying bolt database.
func (bs *boltSlotStorage) Close() error {
	return bs.client.Close()
}

// Load retrieves a slot value of a session from boltdb store.
func (bs *boltSlotStorage) Load(_ context.Context, namespace, slot string) (string, error) {
	// initialize a readable transaction.
	tx, err := bs.client.Begin(false)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	session := tx.Bucket([]byte(bs.config.BucketName)).Bucket([]byte(namespace))
	if session == nil {
		return "", ErrSlotNotFound
	}
	result := session.Get([]byte(slot))
	if result == nil {
		return "", ErrSlotNotFound
	}
	// bytes returned by bolt are only valid during the transaction.
	return string(result), nil
}

// Save creates or replaces a slot value of a session.
func (bs *boltSlotStorage) Save(_ context.Context, namespace, slot, value string) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		session, err := tx.Bucket([]byte(bs.config.BucketName)).CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return fmt.Errorf("failed to create session bucket: %w", err)
		}
		return session.Put([]byte(slot), []byte(value))
	})
}

// Delete removes a slot of a session. The session bucket is dropped once empty.
func (bs *boltSlotStorage) Delete(_ context.Context, namespace, slot string) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(bs.config.BucketName))
		session := root.Bucket([]byte(namespace))
		if session == nil {
			return nil
		}
		if err := session.Delete([]byte(slot)); err != nil {
			return err
		}
		if k, _ := session.Cursor().First(); k == nil {
			return root.DeleteBucket([]byte(namespace))
		}
		return nil
	})
}
