package cart

import "sync"

// SessionStore hands out the per-customer cart for a session handle (the
// authenticated user id). Carts are created on first use and dropped when
// the session ends.
type SessionStore struct {
	mu    sync.RWMutex
	carts map[uint]*Cart
}

func NewSessionStore() *SessionStore {
	return &SessionStore{carts: make(map[uint]*Cart)}
}

func (s *SessionStore) Get(userID uint) *Cart {
	s.mu.RLock()
	c, ok := s.carts[userID]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[userID]; ok {
		return c
	}
	c = New()
	s.carts[userID] = c
	return c
}

// Drop discards the cart for the given session, if any.
func (s *SessionStore) Drop(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}
