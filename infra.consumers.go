package main

import (
	"context"

	"go.uber.org/zap"
)

type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

type orderArchiveConsumer struct {
	logger  *zap.Logger
	queue   Queuer
	archive OrderArchive
}

// NewOrderArchiveConsumer provides a consumer which stores popped orders into the archive.
func NewOrderArchiveConsumer(logger *zap.Logger, q Queuer, archive OrderArchive) Consumer {
	return &orderArchiveConsumer{logger, q, archive}
}

// Consume archives orders until ctx is done.
func (oc *orderArchiveConsumer) Consume(ctx context.Context, qids ...string) error {
	var order Order
	var err error
	var qid string
	for {
		qid, order, err = oc.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			oc.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			oc.logger.Error("consumer: error on queue pop call", zap.Error(err))
			continue
		}

		switch qid {
		case OrdersQueue:
			if err = oc.archive.Add(ctx, order); err != nil {
				oc.logger.Error("consumer: failed to archive order", zap.String("order.id", order.ID), zap.Error(err))
				continue
			}
			oc.logger.Info("consumer: order archived", zap.String("order.id", order.ID), zap.String("session.id", order.Session))
		default:
			oc.logger.Warn("consumer: received order on unknow queue id", zap.String("qid", qid), zap.String("order.id", order.ID))
		}
	}
}
