// Package session mirrors the provider's auth state into the local token cache.
package session

import (
	"sync"

	"booknest/internal/platform/identity"

	"github.com/sirupsen/logrus"
)

// Store keeps the userToken cache entry in step with the provider: written
// while a user is signed in, removed otherwise. The provider stays
// authoritative; the cache is never read back to restore a session.
type Store struct {
	watcher Watcher
	cache   Cache
	log     logrus.FieldLogger

	mu          sync.Mutex
	uid         string
	gen         int
	unsubscribe func()
}

func NewStore(watcher Watcher, cache Cache, log logrus.FieldLogger) *Store {
	return &Store{
		watcher: watcher,
		cache:   cache,
		log:     log.WithField("component", "session"),
	}
}

// Start subscribes to auth-state changes. onChange, if set, receives the
// signed-in UID, or "" when nobody is signed in, after the cache is updated.
// Calling Start again replaces the previous subscription. onChange may call
// Stop, including during the first notification that Start itself triggers.
func (s *Store) Start(onChange func(uid string)) {
	s.Stop()

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	unsubscribe := s.watcher.OnAuthStateChanged(func(u *identity.User) {
		if !s.live(gen) {
			return
		}
		uid := s.apply(u)
		if onChange != nil {
			onChange(uid)
		}
	})

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		unsubscribe()
		return
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
}

// Stop removes the subscription. It is safe to call more than once.
func (s *Store) Stop() {
	s.mu.Lock()
	s.gen++
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Store) live(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

// UserID is the UID from the latest notification.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uid
}

func (s *Store) apply(u *identity.User) string {
	uid := ""
	if u != nil {
		uid = u.UID
		if err := s.cache.Set(TokenKey, u.Token); err != nil {
			s.log.WithError(err).Error("persist session token")
		}
	} else if err := s.cache.Remove(TokenKey); err != nil {
		s.log.WithError(err).Error("clear session token")
	}

	s.mu.Lock()
	s.uid = uid
	s.mu.Unlock()
	return uid
}
