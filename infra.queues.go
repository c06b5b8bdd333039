package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Predefinied Queue IDs.
const (
	OrdersQueue = "orders.placed"
)

var (
	_ Queuer = (*redisQueue)(nil)
	_ Queuer = (*memoryQueue)(nil)
)

// Queuer describes an orders queue.
type Queuer interface {
	Push(ctx context.Context, qid string, order Order) error
	Pop(ctx context.Context, qids ...string) (string, Order, error)
}

// redisQueue represents a queue backed by redis lists.
type redisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) Queuer {
	return &redisQueue{client: client}
}

// Push enqueues an order onto the queue identified by qid.
func (q *redisQueue) Push(ctx context.Context, qid string, order Order) error {
	orderBytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, qid, orderBytes).Err()
}

// Pop blocks until an order is available on one of the queue ids.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, Order, error) {
	var order Order
	var qid string
	infos, err := q.client.BLPop(ctx, 0*time.Second, qids...).Result()
	if err != nil {
		return qid, order, err
	}

	if err = json.Unmarshal([]byte(infos[1]), &order); err != nil {
		return qid, order, err
	}
	qid = infos[0]
	return qid, order, nil
}

type queuedOrder struct {
	qid   string
	order Order
}

// memoryQueue is an in-process queue used when redis is not the storage backend.
type memoryQueue struct {
	items chan queuedOrder
}

// NewMemoryQueue provides an in-process queue holding up to size pending orders.
func NewMemoryQueue(size int) Queuer {
	return &memoryQueue{items: make(chan queuedOrder, size)}
}

// Push enqueues an order. It blocks while the queue is full unless ctx is done.
func (q *memoryQueue) Push(ctx context.Context, qid string, order Order) error {
	select {
	case q.items <- queuedOrder{qid, order}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop returns the next order pushed on any queue id. Queue ids are not
// filtered since a single consumer serves the memory queue.
func (q *memoryQueue) Pop(ctx context.Context, _ ...string) (string, Order, error) {
	select {
	case item := <-q.items:
		return item.qid, item.order, nil
	case <-ctx.Done():
		return "", Order{}, ctx.Err()
	}
}
