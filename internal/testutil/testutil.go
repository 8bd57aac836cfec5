// Package testutil provides in-memory backends, fixtures and recording UI
// doubles for tests.
package testutil

import (
	"sync"
	"time"

	"booknest/internal/auth"
	"booknest/internal/book"
	"booknest/internal/platform/docstore"
	"booknest/internal/platform/identity"
	"booknest/internal/profile"
	"booknest/internal/screen"
	"booknest/internal/session"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// TestSignup is a signup form that passes every local check.
var TestSignup = auth.SignupInput{
	Email:           "a@b.com",
	Password:        "password123",
	ConfirmPassword: "password123",
	FirstName:       "Ada",
	LastName:        "Lovelace",
	Role:            "admin",
	Birthdate:       time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
}

// Backend is a fully wired in-memory backend.
type Backend struct {
	Store    docstore.Store
	Provider *identity.LocalProvider
	Cache    *session.MemoryCache
	Logger   *logrus.Logger
	Hook     *test.Hook

	Auth     *auth.Service
	Books    *book.Service
	Profiles *profile.Service
	Sessions *session.Store
}

// NewBackend wires services over store. A nil store means a fresh
// docstore.MemoryStore.
func NewBackend(store docstore.Store) *Backend {
	if store == nil {
		store = docstore.NewMemoryStore()
	}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	provider := identity.NewLocalProvider(identity.NewMemoryAccounts(), "test-secret", time.Hour)
	cache := session.NewMemoryCache()
	profiles := profile.NewService(profile.NewDocumentRepo(store))

	return &Backend{
		Store:    store,
		Provider: provider,
		Cache:    cache,
		Logger:   logger,
		Hook:     hook,
		Auth:     auth.NewService(provider, profiles, cache, logger),
		Books:    book.NewService(book.NewDocumentRepo(store, logger), nil),
		Profiles: profiles,
		Sessions: session.NewStore(provider, cache, logger),
	}
}

// Messages returns the logged messages at level.
func (b *Backend) Messages(level logrus.Level) []string {
	var out []string
	for _, e := range b.Hook.AllEntries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Navigation is one recorded Navigate call.
type Navigation struct {
	Route  screen.Route
	Params screen.Params
}

// UI records alerts and navigation and answers confirmations with Answer.
type UI struct {
	mu          sync.Mutex
	Answer      bool
	alerts      []string
	confirms    []string
	navigations []Navigation
}

func (u *UI) Alert(message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.alerts = append(u.alerts, message)
}

func (u *UI) Confirm(title, message string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.confirms = append(u.confirms, title+": "+message)
	return u.Answer
}

func (u *UI) Navigate(route screen.Route, params screen.Params) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.navigations = append(u.navigations, Navigation{Route: route, Params: params})
}

func (u *UI) Alerts() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.alerts...)
}

func (u *UI) Confirms() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.confirms...)
}

func (u *UI) Navigations() []Navigation {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]Navigation(nil), u.navigations...)
}

// LastNavigation returns the most recent navigation, if any.
func (u *UI) LastNavigation() (Navigation, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.navigations) == 0 {
		return Navigation{}, false
	}
	return u.navigations[len(u.navigations)-1], true
}
