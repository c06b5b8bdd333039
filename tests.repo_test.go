package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// runSlotStorageTests checks the behavior shared by every slot storage backend.
func runSlotStorageTests(t *testing.T, storage SlotStorage) {
	ctx := context.Background()

	t.Run("Load Missing Slot", func(t *testing.T) {
		value, err := storage.Load(ctx, "s:a", SlotCart)
		assert.ErrorIs(t, err, ErrSlotNotFound)
		assert.Empty(t, value)
	})

	t.Run("Save Then Load", func(t *testing.T) {
		require.NoError(t, storage.Save(ctx, "s:a", SlotCart, `[{"id":1,"quantity":2}]`))
		value, err := storage.Load(ctx, "s:a", SlotCart)
		require.NoError(t, err)
		assert.Equal(t, `[{"id":1,"quantity":2}]`, value)
	})

	t.Run("Save Replaces Value", func(t *testing.T) {
		require.NoError(t, storage.Save(ctx, "s:a", SlotCart, `[]`))
		value, err := storage.Load(ctx, "s:a", SlotCart)
		require.NoError(t, err)
		assert.Equal(t, `[]`, value)
	})

	t.Run("Values Are Opaque", func(t *testing.T) {
		require.NoError(t, storage.Save(ctx, "s:a", SlotDarkMode, "not json"))
		value, err := storage.Load(ctx, "s:a", SlotDarkMode)
		require.NoError(t, err)
		assert.Equal(t, "not json", value)
	})

	t.Run("Namespaces Are Isolated", func(t *testing.T) {
		require.NoError(t, storage.Save(ctx, "s:b", SlotCart, `[{"id":9}]`))
		value, err := storage.Load(ctx, "s:a", SlotCart)
		require.NoError(t, err)
		assert.Equal(t, `[]`, value)
		_, err = storage.Load(ctx, "s:b", SlotFavorites)
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})

	t.Run("Delete Slot", func(t *testing.T) {
		require.NoError(t, storage.Delete(ctx, "s:a", SlotCart))
		_, err := storage.Load(ctx, "s:a", SlotCart)
		assert.ErrorIs(t, err, ErrSlotNotFound)
		// other slots of the namespace survive.
		value, err := storage.Load(ctx, "s:a", SlotDarkMode)
		require.NoError(t, err)
		assert.Equal(t, "not json", value)
	})

	t.Run("Delete Missing Slot", func(t *testing.T) {
		assert.NoError(t, storage.Delete(ctx, "s:a", SlotCheckout))
		assert.NoError(t, storage.Delete(ctx, "s:unknown", SlotCheckout))
	})

	t.Run("Delete Last Slot Then Save", func(t *testing.T) {
		require.NoError(t, storage.Delete(ctx, "s:b", SlotCart))
		require.NoError(t, storage.Save(ctx, "s:b", SlotFavorites, `[]`))
		value, err := storage.Load(ctx, "s:b", SlotFavorites)
		require.NoError(t, err)
		assert.Equal(t, `[]`, value)
	})
}

func TestMemorySlotStorage(t *testing.T) {
	storage := NewMemorySlotStorage()
	defer storage.Close()
	runSlotStorageTests(t, storage)
}

func TestRedisSlotStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	storage := NewRedisSlotStorage(zap.NewNop(), client)
	runSlotStorageTests(t, storage)

	// each session owns one hash keyed by slot name.
	require.NoError(t, storage.Save(context.Background(), "s:layout", SlotDarkMode, "true"))
	assert.Equal(t, "true", mr.HGet(HSlotsPrefix+"s:layout", SlotDarkMode))
	assert.NoError(t, storage.Close())
}

func TestRedisSlotStorage_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	storage := NewRedisSlotStorage(zap.NewNop(), client)
	mr.Close()

	_, err := storage.Load(context.Background(), "s:a", SlotCart)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSlotNotFound)
}

func TestGetRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	config := &Config{Redis: RedisConfig{Host: mr.Host(), Port: mr.Port(), DialTimeout: time.Second}}
	client, err := GetRedisClient(config)
	require.NoError(t, err)
	assert.NoError(t, client.Close())

	mr.Close()
	client, err = GetRedisClient(config)
	assert.Error(t, err)
	client.Close()
}

// newTestBoltConfig returns a configuration pointing to a temporary bolt file.
func newTestBoltConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		BoltDB: BoltDBConfig{
			FilePath:         filepath.Join(t.TempDir(), "readscape.test.db"),
			Timeout:          5 * time.Second,
			BucketName:       "test.slots",
			OrdersBucketName: "test.orders",
		},
	}
}

func TestBoltSlotStorage(t *testing.T) {
	config := newTestBoltConfig(t)
	client, err := GetBoltDBClient(config)
	require.NoError(t, err, "failed in creating a test bolt store")
	storage := NewBoltSlotStorage(zap.NewNop(), &config.BoltDB, client)
	defer storage.Close()
	runSlotStorageTests(t, storage)
}

// TestBoltSlotStorage_Reopen ensures slots survive a restart.
func TestBoltSlotStorage_Reopen(t *testing.T) {
	ctx := context.Background()
	config := newTestBoltConfig(t)
	client, err := GetBoltDBClient(config)
	require.NoError(t, err)
	storage := NewBoltSlotStorage(zap.NewNop(), &config.BoltDB, client)
	require.NoError(t, storage.Save(ctx, "s:a", SlotFavorites, `[{"id":3}]`))
	require.NoError(t, storage.Close())

	client, err = GetBoltDBClient(config)
	require.NoError(t, err)
	storage = NewBoltSlotStorage(zap.NewNop(), &config.BoltDB, client)
	defer storage.Close()
	value, err := storage.Load(ctx, "s:a", SlotFavorites)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":3}]`, value)
}

func TestSQLiteSlotStorage(t *testing.T) {
	config := &Config{SQLite: SQLiteConfig{FilePath: filepath.Join(t.TempDir(), "readscape.test.sqlite")}}
	db, err := GetSQLiteClient(config)
	require.NoError(t, err)
	storage := NewSQLiteSlotStorage(zap.NewNop(), db, NewMockClocker())
	defer storage.Close()
	runSlotStorageTests(t, storage)

	var updatedAt string
	require.NoError(t, db.QueryRow(`SELECT updated_at FROM slots WHERE namespace = ? AND slot = ?`, "s:a", SlotDarkMode).Scan(&updatedAt))
	assert.Equal(t, "2023-07-02T00:00:00.000Z", updatedAt)
}

func TestBoltOrderArchive(t *testing.T) {
	ctx := context.Background()
	config := newTestBoltConfig(t)
	client, err := GetBoltDBClient(config)
	require.NoError(t, err)
	defer client.Close()
	archive := NewBoltOrderArchive(zap.NewNop(), &config.BoltDB, client)

	_, err = archive.GetOne(ctx, "o:missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	orders, err := archive.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	first := Order{ID: "o:1", Session: "s:a", Lines: []CartEntry{{Book: testBook(t, 1), Quantity: 2}}, PlacedAt: NewMockClocker().Now()}
	second := Order{ID: "o:2", Session: "s:b", PlacedAt: NewMockClocker().Now()}
	require.NoError(t, archive.Add(ctx, second))
	require.NoError(t, archive.Add(ctx, first))

	got, err := archive.GetOne(ctx, "o:1")
	require.NoError(t, err)
	assert.Equal(t, "s:a", got.Session)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 2, got.Lines[0].Quantity)
	assert.True(t, got.Lines[0].Price.Equal(testBook(t, 1).Price))
	assert.True(t, first.PlacedAt.Equal(got.PlacedAt))

	orders, err = archive.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "o:1", orders[0].ID)
	assert.Equal(t, "o:2", orders[1].ID)
}
