package profile

import (
	"context"
)

// Repository defines the contract for profile storage.
type Repository interface {
	Get(ctx context.Context, uid string) (Profile, error)
	Put(ctx context.Context, p Profile) error
}
