package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HSlotsPrefix prefixes the hash holding the slots of a session.
const HSlotsPrefix string = "slots:"

var _ SlotStorage = (*redisSlotStorage)(nil)

type redisSlotStorage struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisSlotStorage provides an instance of redis-based slot storage.
// Each session owns one hash keyed by slot name.
func NewRedisSlotStorage(logger *zap.Logger, client *redis.Client) SlotStorage {
	return &redisSlotStorage{
		logger: logger,
		client: client,
	}
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

func sessionHashKey(namespace string) string {
	return HSlotsPrefix + namespace
}

// Load retrieves the raw value of a session slot.
func (rs *redisSlotStorage) Load(ctx context.Context, namespace, slot string) (string, error) {
	value, err := rs.client.HGet(ctx, sessionHashKey(namespace), slot).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSlotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis: failed to load slot %s: %w", slot, err)
	}
	return value, nil
}

// Save replaces the slot value or inserts it if it does not exist.
func (rs *redisSlotStorage) Save(ctx context.Context, namespace, slot, value string) error {
	if err := rs.client.HSet(ctx, sessionHashKey(namespace), slot, value).Err(); err != nil {
		return fmt.Errorf("redis: failed to save slot %s: %w", slot, err)
	}
	return nil
}

// Delete removes a session slot. The hash disappears with its last field.
func (rs *redisSlotStorage) Delete(ctx context.Context, namespace, slot string) error {
	err := rs.client.HDel(ctx, sessionHashKey(namespace), slot).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis: failed to delete slot %s: %w", slot, err)
	}
	return nil
}

// Close is a no-op: the redis client is shared with the order queue
// and closed by the app on shutdown.
func (rs *redisSlotStorage) Close() error {
	return nil
}
