package repository

import (
	"context"
	"sync"

	"github.com/Lixing-Zhang/fast-order/internal/models"
)

// CartStore keeps one cart per shopper session.
//
// Update is the critical section for cart mutations: the cart is loaded, fn
// runs against it and the result is persisted only when fn returns nil.
// Concurrent updates of the same session never interleave.
type CartStore interface {
	Get(ctx context.Context, sessionID string) (*models.Cart, error)
	Update(ctx context.Context, sessionID string, fn func(cart *models.Cart) error) (*models.Cart, error)
}

// InMemoryCartStore implements CartStore in process memory
type InMemoryCartStore struct {
	mu       sync.Mutex
	carts    map[string]*models.Cart
	sessions map[string]*sync.Mutex
}

// NewInMemoryCartStore creates an empty in-memory cart store
func NewInMemoryCartStore() *InMemoryCartStore {
	return &InMemoryCartStore{
		carts:    make(map[string]*models.Cart),
		sessions: make(map[string]*sync.Mutex),
	}
}

// Get returns a copy of the session cart, or an empty cart
func (s *InMemoryCartStore) Get(ctx context.Context, sessionID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cart, ok := s.carts[sessionID]; ok {
		return cart.Clone(), nil
	}
	return models.NewCart(sessionID), nil
}

// Update runs fn on a working copy of the session cart and stores it on success
func (s *InMemoryCartStore) Update(ctx context.Context, sessionID string, fn func(cart *models.Cart) error) (*models.Cart, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := fn(cart); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.carts[sessionID] = cart.Clone()
	s.mu.Unlock()

	return cart, nil
}

func (s *InMemoryCartStore) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.sessions[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.sessions[sessionID] = lock
	}
	return lock
}

var _ CartStore = (*InMemoryCartStore)(nil)
