package screen

import (
	"context"
	"sync"

	"booknest/internal/auth"

	"github.com/sirupsen/logrus"
)

type Tab string

const (
	TabDashboard Tab = "Dashboard"
	TabInventory Tab = "Inventory"
	TabProfile   Tab = "Profile"
)

// Tabs in display order.
var Tabs = []Tab{TabDashboard, TabInventory, TabProfile}

// Dashboard is the tab container shown after login. Tabs are mounted the
// first time they are selected and stay mounted.
type Dashboard struct {
	uid       string
	auth      *auth.Service
	nav       Navigator
	alert     Alerter
	inventory *Inventory
	profile   *Profile
	log       logrus.FieldLogger

	mu      sync.Mutex
	active  Tab
	mounted map[Tab]bool
}

func NewDashboard(uid string, authSvc *auth.Service, inventory *Inventory, profile *Profile, nav Navigator, alert Alerter, log logrus.FieldLogger) *Dashboard {
	return &Dashboard{
		uid:       uid,
		auth:      authSvc,
		nav:       nav,
		alert:     alert,
		inventory: inventory,
		profile:   profile,
		log:       log.WithField("screen", "dashboard"),
		mounted:   make(map[Tab]bool),
	}
}

func (c *Dashboard) Mount(ctx context.Context) {
	c.Select(ctx, TabDashboard)
}

// Select switches tabs, mounting the tab on first use.
func (c *Dashboard) Select(ctx context.Context, tab Tab) {
	c.mu.Lock()
	c.active = tab
	first := !c.mounted[tab]
	c.mounted[tab] = true
	c.mu.Unlock()

	if !first {
		return
	}
	switch tab {
	case TabInventory:
		c.inventory.Mount(ctx)
	case TabProfile:
		c.profile.Mount(ctx)
	}
}

func (c *Dashboard) Active() Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Dashboard) UID() string { return c.uid }

func (c *Dashboard) Inventory() *Inventory { return c.inventory }

func (c *Dashboard) Profile() *Profile { return c.profile }

// Logout signs out and returns to the login screen.
func (c *Dashboard) Logout(ctx context.Context) {
	if err := c.auth.Logout(ctx); err != nil {
		c.log.WithError(err).Error("logout")
		c.alert.Alert("Logout failed. Please try again.")
		return
	}
	c.nav.Navigate(RouteLogin, nil)
}
