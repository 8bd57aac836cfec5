package profile

import (
	"context"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Load returns the profile stored under uid, or ErrNotFound.
func (s *Service) Load(ctx context.Context, uid string) (Profile, error) {
	return s.repo.Get(ctx, uid)
}

// Create writes the profile once, at signup.
func (s *Service) Create(ctx context.Context, p Profile) error {
	return s.repo.Put(ctx, p)
}
