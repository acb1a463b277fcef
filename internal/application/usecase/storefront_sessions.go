// internal/application/usecase/storefront_sessions.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	cartdom "modaorganica/internal/domain/cart"
	locationdom "modaorganica/internal/domain/location"
)

var ErrSessionInvalid = errors.New("storefront: invalid session id")

// DefaultSessionIdle is how long an untouched session stays in memory.
const DefaultSessionIdle = 30 * time.Minute

// StorefrontSession is one buyer's cart plus checkout coordinator.
type StorefrontSession struct {
	ID       string
	Store    *CartStore
	Checkout *CheckoutCoordinator

	lastSeen time.Time
}

// StorefrontSessions keeps live sessions in memory and their carts in the state repository.
// A swept session is rebuilt from its persisted cart on the next request.
type StorefrontSessions struct {
	repo    cartdom.StateRepository
	gateway CheckoutGateway
	rules   ShippingRules
	locs    *locationdom.Catalogue
	timeout time.Duration
	idle    time.Duration
	clock   Clock
	log     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*StorefrontSession
}

func NewStorefrontSessions(repo cartdom.StateRepository, gateway CheckoutGateway, rules ShippingRules, locs *locationdom.Catalogue, logger *zap.Logger) *StorefrontSessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorefrontSessions{
		repo:     repo,
		gateway:  gateway,
		rules:    rules,
		locs:     locs,
		timeout:  DefaultCheckoutTimeout,
		idle:     DefaultSessionIdle,
		clock:    systemClock{},
		log:      logger,
		sessions: map[string]*StorefrontSession{},
	}
}

func (s *StorefrontSessions) WithTimeout(d time.Duration) *StorefrontSessions {
	if d > 0 {
		s.timeout = d
	}
	return s
}

func (s *StorefrontSessions) WithIdle(d time.Duration) *StorefrontSessions {
	if d > 0 {
		s.idle = d
	}
	return s
}

func (s *StorefrontSessions) WithClock(c Clock) *StorefrontSessions {
	if c != nil {
		s.clock = c
	}
	return s
}

// Get returns the live session for id, loading its cart on first use.
func (s *StorefrontSessions) Get(ctx context.Context, id string) (*StorefrontSession, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, " \t\r\n") {
		return nil, ErrSessionInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if sess, ok := s.sessions[id]; ok {
		sess.lastSeen = now
		return sess, nil
	}

	store := NewCartStore(ctx, s.repo, cartdom.KeyFor(id), s.log)
	co := NewCheckoutCoordinator(store, s.gateway, s.rules, s.locs, s.log).WithTimeout(s.timeout)
	sess := &StorefrontSession{ID: id, Store: store, Checkout: co, lastSeen: now}
	s.sessions[id] = sess
	return sess, nil
}

// Len is the number of live sessions.
func (s *StorefrontSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the idle window and returns how many were dropped.
// Sessions with a submission in flight are kept.
func (s *StorefrontSessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock.Now().Add(-s.idle)
	n := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.After(cutoff) || sess.Checkout.State().Busy() {
			continue
		}
		sess.Checkout.Close()
		delete(s.sessions, id)
		n++
	}
	if n > 0 {
		s.log.Named("storefront_sessions").Debug("swept idle sessions", zap.Int("count", n))
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *StorefrontSessions) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.Sweep()
		}
	}
}
