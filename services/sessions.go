package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"pizza-palace/models"
)

const DefaultSessionTTL = 24 * time.Hour

type session struct {
	user      models.User
	expiresAt time.Time
}

// Sessions maps opaque bearer tokens to users.
type Sessions struct {
	mu    sync.RWMutex
	items map[string]session
	ttl   time.Duration
	now   func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{items: make(map[string]session), ttl: ttl, now: time.Now}
}

func (s *Sessions) Create(u models.User) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.items[token] = session{user: u, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return token
}

func (s *Sessions) Get(token string) (*models.User, bool) {
	s.mu.RLock()
	sess, ok := s.items[token]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !s.now().Before(sess.expiresAt) {
		s.Delete(token)
		return nil, false
	}
	u := sess.user
	return &u, true
}

func (s *Sessions) Delete(token string) {
	s.mu.Lock()
	delete(s.items, token)
	s.mu.Unlock()
}

// Prune drops expired sessions and returns how many were removed.
func (s *Sessions) Prune() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for tok, sess := range s.items {
		if !now.Before(sess.expiresAt) {
			delete(s.items, tok)
			n++
		}
	}
	return n
}
