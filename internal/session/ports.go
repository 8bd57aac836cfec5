package session

import (
	"booknest/internal/platform/identity"
)

// TokenKey is the cache entry holding the signed-in user's ID token.
const TokenKey = "userToken"

// Cache is the local key/value store that survives restarts.
type Cache interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Watcher is the part of identity.Provider the store listens to.
type Watcher interface {
	OnAuthStateChanged(fn func(*identity.User)) (unsubscribe func())
}
