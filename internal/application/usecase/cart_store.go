// internal/application/usecase/cart_store.go
package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	cartdom "modaorganica/internal/domain/cart"
	productdom "modaorganica/internal/domain/product"
)

// CartListener receives a snapshot after every mutation.
type CartListener func(cartdom.Cart)

// CartStore is the single owner of one cart's state.
//
// Every mutation goes through Dispatch, which runs apply -> persist -> notify
// under dispatchMu, so a second mutation never observes a half-finished one.
// Listeners are called synchronously and must not dispatch back into the store.
type CartStore struct {
	repo cartdom.StateRepository
	key  string
	log  *zap.Logger

	dispatchMu sync.Mutex

	stateMu   sync.RWMutex
	state     cartdom.Cart
	listeners map[int]CartListener
	nextID    int
}

// NewCartStore loads the persisted cart under key (cart.StorageKey when empty).
// Missing or unreadable state starts from the empty cart; the load never fails.
func NewCartStore(ctx context.Context, repo cartdom.StateRepository, key string, logger *zap.Logger) *CartStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if key == "" {
		key = cartdom.StorageKey
	}
	s := &CartStore{
		repo:      repo,
		key:       key,
		log:       logger.Named("cart_store").With(zap.String("key", key)),
		state:     cartdom.Empty(),
		listeners: map[int]CartListener{},
	}
	s.state = s.load(ctx)
	return s
}

func (s *CartStore) load(ctx context.Context) cartdom.Cart {
	if s.repo == nil {
		return cartdom.Empty()
	}
	raw, err := s.repo.Load(ctx, s.key)
	if err != nil {
		s.warn(&cartdom.PersistenceError{Key: s.key, Op: "load", Err: err})
		return cartdom.Empty()
	}
	c, err := cartdom.Decode(raw)
	if err != nil {
		s.warn(&cartdom.PersistenceError{Key: s.key, Op: "decode", Err: err})
		return cartdom.Empty()
	}
	return c
}

func (s *CartStore) warn(err *cartdom.PersistenceError) {
	s.log.Warn("cart state unavailable, using empty cart", zap.String("op", err.Op), zap.Error(err))
}

// Key is the storage key this store persists under.
func (s *CartStore) Key() string { return s.key }

// GetCart returns a snapshot without subscribing.
func (s *CartStore) GetCart() cartdom.Cart {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state.Snapshot()
}

// Subscribe registers l, calls it once with the current cart and returns the unsubscribe func.
func (s *CartStore) Subscribe(l CartListener) func() {
	if l == nil {
		return func() {}
	}
	s.dispatchMu.Lock()
	s.stateMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	current := s.state.Snapshot()
	s.stateMu.Unlock()
	l(current)
	s.dispatchMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.stateMu.Lock()
			delete(s.listeners, id)
			s.stateMu.Unlock()
		})
	}
}

// Dispatch applies a to the current cart, persists the result and notifies listeners.
// Actions that reject their input leave the cart unchanged and return the error.
func (s *CartStore) Dispatch(ctx context.Context, a cartdom.Action) (cartdom.Cart, error) {
	if a == nil {
		return s.GetCart(), nil
	}
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.stateMu.RLock()
	current := s.state
	s.stateMu.RUnlock()

	next, err := a.Apply(current)
	if err != nil {
		s.log.Debug("action rejected", zap.String("action", a.Name()), zap.Error(err))
		return current.Snapshot(), err
	}

	s.stateMu.Lock()
	s.state = next
	listeners := make([]CartListener, 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if l, ok := s.listeners[i]; ok {
			listeners = append(listeners, l)
		}
	}
	s.stateMu.Unlock()

	s.persist(ctx, next)

	for _, l := range listeners {
		l(next.Snapshot())
	}
	return next.Snapshot(), nil
}

func (s *CartStore) persist(ctx context.Context, c cartdom.Cart) {
	if s.repo == nil {
		return
	}
	raw, err := cartdom.Encode(c)
	if err == nil {
		err = s.repo.Save(ctx, s.key, raw)
	}
	if err != nil {
		perr := &cartdom.PersistenceError{Key: s.key, Op: "save", Err: err}
		s.log.Warn("cart state not saved", zap.Error(perr))
	}
}

// AddProduct merges p into the cart; qty below 1 counts as 1.
func (s *CartStore) AddProduct(ctx context.Context, p cartdom.ProductRef, qty int) (cartdom.Cart, error) {
	return s.Dispatch(ctx, cartdom.AddProductAction{Product: p, Quantity: qty})
}

func (s *CartStore) RemoveProduct(ctx context.Context, id productdom.ID) cartdom.Cart {
	c, _ := s.Dispatch(ctx, cartdom.RemoveProductAction{ID: id})
	return c
}

func (s *CartStore) UpdateQuantity(ctx context.Context, id productdom.ID, qty int) cartdom.Cart {
	c, _ := s.Dispatch(ctx, cartdom.UpdateQuantityAction{ID: id, Quantity: qty})
	return c
}

func (s *CartStore) Clear(ctx context.Context) cartdom.Cart {
	c, _ := s.Dispatch(ctx, cartdom.ClearAction{})
	return c
}

// Forget deletes the persisted state without touching the in-memory cart.
func (s *CartStore) Forget(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Delete(ctx, s.key); err != nil {
		return &cartdom.PersistenceError{Key: s.key, Op: "delete", Err: err}
	}
	return nil
}
