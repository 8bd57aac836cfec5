package screen

import (
	"context"
	"errors"
	"sync"

	"booknest/internal/profile"

	"github.com/sirupsen/logrus"
)

type ProfileView struct {
	Loading bool
	Found   bool
	Profile profile.Profile
}

// Profile shows the signed-in admin's profile document.
type Profile struct {
	profiles *profile.Service
	uid      string
	log      logrus.FieldLogger

	mu      sync.Mutex
	loading bool
	found   bool
	data    profile.Profile
}

func NewProfile(profiles *profile.Service, uid string, log logrus.FieldLogger) *Profile {
	return &Profile{
		profiles: profiles,
		uid:      uid,
		log:      log.WithField("screen", "profile"),
		loading:  true,
	}
}

// Mount fetches the profile once. Without a uid there is nothing to fetch
// and the loading flag is simply cleared.
func (c *Profile) Mount(ctx context.Context) {
	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()
	if c.uid == "" {
		return
	}

	p, err := c.profiles.Load(ctx, c.uid)
	switch {
	case errors.Is(err, profile.ErrNotFound):
		c.log.WithField("uid", c.uid).Warn("No user document found")
		return
	case err != nil:
		c.log.WithError(err).Error("fetch profile")
		return
	}

	c.mu.Lock()
	c.data = p
	c.found = true
	c.mu.Unlock()
}

func (c *Profile) View() ProfileView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ProfileView{Loading: c.loading, Found: c.found, Profile: c.data}
}
