package main

import (
	"context"
	"encoding/json"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

// OrderArchive stores placed orders for later consultation.
type OrderArchive interface {
	Add(ctx context.Context, order Order) error
	GetOne(ctx context.Context, id string) (Order, error)
	GetAll(ctx context.Context) ([]Order, error)
}

var _ OrderArchive = (*boltOrderArchive)(nil)

type boltOrderArchive struct {
	logger *zap.Logger
	client *bolt.DB
	bucket []byte
}

// NewBoltOrderArchive provides an instance of bolt-based order archive.
func NewBoltOrderArchive(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) OrderArchive {
	return &boltOrderArchive{
		logger: logger,
		client: client,
		bucket: []byte(boltConfig.OrdersBucketName),
	}
}

// Add inserts or replaces an order record.
func (oa *boltOrderArchive) Add(_ context.Context, order Order) error {
	orderBytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return oa.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(oa.bucket).Put([]byte(order.ID), orderBytes)
	})
}

// GetOne retrieves an order based on its ID.
func (oa *boltOrderArchive) GetOne(_ context.Context, id string) (Order, error) {
	var order Order
	tx, err := oa.client.Begin(false)
	if err != nil {
		return order, err
	}
	defer tx.Rollback()

	result := tx.Bucket(oa.bucket).Get([]byte(id))
	if result == nil {
		return order, ErrOrderNotFound
	}
	err = json.Unmarshal(result, &order)
	return order, err
}

// GetAll retrieves all archived orders sorted by id.
func (oa *boltOrderArchive) GetAll(_ context.Context) ([]Order, error) {
	tx, err := oa.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	c := tx.Bucket(oa.bucket).Cursor()

	orders := []Order{}
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var order Order
		if err = json.Unmarshal(v, &order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}
