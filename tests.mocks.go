package main

import (
	"context"
	"sync"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

type MockSlotStorage struct {
	LoadFunc   func(ctx context.Context, namespace, slot string) (string, error)
	SaveFunc   func(ctx context.Context, namespace, slot, value string) error
	DeleteFunc func(ctx context.Context, namespace, slot string) error
	CloseFunc  func() error
}

// Load mocks the behavior of reading a slot by the repository.
func (m *MockSlotStorage) Load(ctx context.Context, namespace, slot string) (string, error) {
	return m.LoadFunc(ctx, namespace, slot)
}

// Save mocks the behavior of writing a slot by the repository.
func (m *MockSlotStorage) Save(ctx context.Context, namespace, slot, value string) error {
	return m.SaveFunc(ctx, namespace, slot, value)
}

// Delete mocks the behavior of deleting a slot by the repository.
func (m *MockSlotStorage) Delete(ctx context.Context, namespace, slot string) error {
	return m.DeleteFunc(ctx, namespace, slot)
}

// Close mocks the repository shutdown.
func (m *MockSlotStorage) Close() error {
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc()
}

type MockQueuer struct {
	PushFunc func(ctx context.Context, qid string, order Order) error
	PopFunc  func(ctx context.Context, qids ...string) (string, Order, error)
}

// Push mocks the behavior of queuing an order.
func (m *MockQueuer) Push(ctx context.Context, qid string, order Order) error {
	return m.PushFunc(ctx, qid, order)
}

// Pop mocks the behavior of dequeuing an order.
func (m *MockQueuer) Pop(ctx context.Context, qids ...string) (string, Order, error) {
	return m.PopFunc(ctx, qids...)
}

type MockOrderArchive struct {
	AddFunc    func(ctx context.Context, order Order) error
	GetOneFunc func(ctx context.Context, id string) (Order, error)
	GetAllFunc func(ctx context.Context) ([]Order, error)
}

// Add mocks the behavior of archiving an order.
func (m *MockOrderArchive) Add(ctx context.Context, order Order) error {
	return m.AddFunc(ctx, order)
}

// GetOne mocks the behavior of retrieving an archived order.
func (m *MockOrderArchive) GetOne(ctx context.Context, id string) (Order, error) {
	return m.GetOneFunc(ctx, id)
}

// GetAll mocks the behavior of listing archived orders.
func (m *MockOrderArchive) GetAll(ctx context.Context) ([]Order, error) {
	return m.GetAllFunc(ctx)
}

// MockClocker implements a fake TickerClocker.
type MockClocker struct {
	mu       sync.Mutex
	MockNow  time.Time
	TickerCh chan time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{MockNow: time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	mck.mu.Lock()
	defer mck.mu.Unlock()
	return mck.MockNow
}

// Advance moves the mocked time forward.
func (mck *MockClocker) Advance(d time.Duration) {
	mck.mu.Lock()
	defer mck.mu.Unlock()
	mck.MockNow = mck.MockNow.Add(d)
}

// NewTicker returns a stopped ticker whose channel is TickerCh when set,
// so tests decide when ticks happen.
func (mck *MockClocker) NewTicker(d time.Duration) *time.Ticker {
	t := time.NewTicker(d)
	t.Stop()
	if mck.TickerCh != nil {
		t.C = mck.TickerCh
	}
	return t
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}

// recordingNotifier counts published signals per topic.
type recordingNotifier struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{counts: make(map[string]int)}
}

func (rn *recordingNotifier) Publish(topic string) {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	rn.counts[topic]++
}

func (rn *recordingNotifier) Subscribe(string, func()) func() {
	return func() {}
}

func (rn *recordingNotifier) count(topic string) int {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	return rn.counts[topic]
}
