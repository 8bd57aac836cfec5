package identity

import "sync"

// authState holds the live user and fans changes out to listeners.
// Listeners run outside the lock, so they may call back into the provider.
type authState struct {
	mu        sync.Mutex
	user      *User
	listeners map[int]func(*User)
	nextID    int
}

func (s *authState) current() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *authState) token() string {
	u, ok := s.current()
	if !ok {
		return ""
	}
	return u.Token
}

func (s *authState) set(u *User) {
	s.mu.Lock()
	if u != nil {
		cp := *u
		u = &cp
	}
	s.user = u
	fns := make([]func(*User), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(copyUser(u))
	}
}

func (s *authState) subscribe(fn func(*User)) func() {
	s.mu.Lock()
	if s.listeners == nil {
		s.listeners = make(map[int]func(*User))
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	u := copyUser(s.user)
	s.mu.Unlock()

	fn(u)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
