package main

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const SessionIDPrefix string = "s"

// Badges are the navbar counters of a session.
type Badges struct {
	CartItems int64 `json:"cartItems"`
	Favorites int64 `json:"favorites"`
}

// Session gathers the stores of one visitor around a private bus. It plays
// the role of a browser tab: views of the same session observe each other.
type Session struct {
	ID         string
	Bus        *Bus
	Cart       *CartStore
	Favorites  *FavoritesStore
	Theme      *ThemeStore
	Checkout   *Checkout
	Newsletter *NewsletterStore

	logger    *zap.Logger
	cartItems atomic.Int64
	favorites atomic.Int64
	lastSeen  atomic.Int64
	unsubs    []func()
}

// Badges returns the counters maintained from the bus signals.
func (s *Session) Badges() Badges {
	return Badges{CartItems: s.cartItems.Load(), Favorites: s.favorites.Load()}
}

// LastSeen returns the last time the session was used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// watchBadges subscribes the badge counters to the session bus. Like any
// other view they re-read the stores on every signal.
func (s *Session) watchBadges() {
	s.refreshCartBadge()
	s.refreshFavoritesBadge()
	s.unsubs = append(s.unsubs,
		s.Bus.Subscribe(TopicCartChanged, s.refreshCartBadge),
		s.Bus.Subscribe(TopicFavoritesChanged, s.refreshFavoritesBadge),
	)
}

func (s *Session) refreshCartBadge() {
	count, err := s.Cart.ItemCount(context.Background())
	if err != nil {
		s.logger.Error("session: failed to refresh cart badge", zap.String("session.id", s.ID), zap.Error(err))
		return
	}
	s.cartItems.Store(int64(count))
}

func (s *Session) refreshFavoritesBadge() {
	books, err := s.Favorites.List(context.Background())
	if err != nil {
		s.logger.Error("session: failed to refresh favorites badge", zap.String("session.id", s.ID), zap.Error(err))
		return
	}
	s.favorites.Store(int64(len(books)))
}

func (s *Session) close() {
	for _, unsubscribe := range s.unsubs {
		unsubscribe()
	}
}

// SessionProvider gives access to the sessions of the storefront.
type SessionProvider interface {
	Get(id string) *Session
	Len() int
}

var _ SessionProvider = (*SessionManager)(nil)

// SessionManager keeps the live sessions in memory. Their persisted slots
// outlive them: an evicted session is rebuilt from storage on next use.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	logger      *zap.Logger
	storage     SlotStorage
	pricing     Pricing
	clock       TickerClocker
	ids         UIDHandler
	idleTimeout time.Duration
	interval    time.Duration
}

// NewSessionManager provides a ready to use SessionManager.
func NewSessionManager(logger *zap.Logger, config *SessionConfig, storage SlotStorage, pricing Pricing, clock TickerClocker, ids UIDHandler) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		logger:      logger,
		storage:     storage,
		pricing:     pricing,
		clock:       clock,
		ids:         ids,
		idleTimeout: config.IdleTimeout,
		interval:    config.SweepInterval,
	}
}

// Get returns the session with the given id, building it on first use.
func (sm *SessionManager) Get(id string) *Session {
	now := sm.clock.Now()
	// Touched under the lock so Sweep never evicts a session being handed out.
	sm.mu.RLock()
	s, ok := sm.sessions[id]
	if ok {
		s.touch(now)
	}
	sm.mu.RUnlock()
	if ok {
		return s
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok = sm.sessions[id]; ok {
		s.touch(now)
		return s
	}
	s = sm.newSession(id)
	s.touch(now)
	sm.sessions[id] = s
	sm.logger.Debug("session: created", zap.String("session.id", id))
	return s
}

func (sm *SessionManager) newSession(id string) *Session {
	logger := sm.logger.With(zap.String("session.id", id))
	bus := NewBus()
	cart := NewCartStore(logger, sm.storage, bus, id)
	s := &Session{
		ID:         id,
		Bus:        bus,
		Cart:       cart,
		Favorites:  NewFavoritesStore(logger, sm.storage, bus, id),
		Theme:      NewThemeStore(logger, sm.storage, id),
		Checkout:   NewCheckout(logger, sm.storage, cart, sm.pricing, sm.clock, sm.ids, id),
		Newsletter: NewNewsletterStore(logger, sm.storage, sm.clock, id),
		logger:     logger,
	}
	s.watchBadges()
	return s
}

// Len returns the number of live sessions.
func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// Sweep evicts the sessions idle for longer than the idle timeout and returns
// how many were removed. A session with event stream subscribers is kept.
func (sm *SessionManager) Sweep(now time.Time) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	evicted := 0
	for id, s := range sm.sessions {
		if now.Sub(s.LastSeen()) < sm.idleTimeout || s.hasListeners() {
			continue
		}
		s.close()
		delete(sm.sessions, id)
		evicted++
	}
	return evicted
}

// hasListeners reports whether subscribers other than the badges remain.
func (s *Session) hasListeners() bool {
	return s.Bus.Subscribers(TopicCartChanged) > 1 || s.Bus.Subscribers(TopicFavoritesChanged) > 1
}

// RunSweeper periodically evicts idle sessions until ctx is done.
func (sm *SessionManager) RunSweeper(ctx context.Context) error {
	if sm.interval <= 0 || sm.idleTimeout <= 0 {
		sm.logger.Info("session: sweeper disabled")
		return nil
	}
	ticker := sm.clock.NewTicker(sm.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			sm.logger.Info("session: sweeper stopped", zap.String("reason", ctx.Err().Error()))
			return nil
		case <-ticker.C:
			if n := sm.Sweep(sm.clock.Now()); n > 0 {
				sm.logger.Info("session: idle sessions evicted", zap.Int("count", n), zap.Int("remaining", sm.Len()))
			}
		}
	}
}
