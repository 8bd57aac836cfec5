package screen

import (
	"context"
	"errors"
	"sync"

	"booknest/internal/auth"
	"booknest/internal/session"

	"github.com/sirupsen/logrus"
)

// Login is the entry screen. While mounted it follows the session store and
// moves to the dashboard as soon as a user is signed in.
type Login struct {
	auth     *auth.Service
	sessions *session.Store
	nav      Navigator
	alert    Alerter
	log      logrus.FieldLogger

	mu       sync.Mutex
	email    string
	password string
}

func NewLogin(authSvc *auth.Service, sessions *session.Store, nav Navigator, alert Alerter, log logrus.FieldLogger) *Login {
	return &Login{
		auth:     authSvc,
		sessions: sessions,
		nav:      nav,
		alert:    alert,
		log:      log.WithField("screen", "login"),
	}
}

func (c *Login) Mount() {
	c.sessions.Start(func(uid string) {
		if uid != "" {
			c.nav.Navigate(RouteDashboard, Params{ParamUID: uid})
		}
	})
}

func (c *Login) Unmount() {
	c.sessions.Stop()
}

func (c *Login) SetEmail(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.email = v
}

func (c *Login) SetPassword(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.password = v
}

// Submit attempts a login. Navigation on success happens through the
// session subscription.
func (c *Login) Submit(ctx context.Context) {
	c.mu.Lock()
	email, password := c.email, c.password
	c.mu.Unlock()

	if _, err := c.auth.Login(ctx, email, password); err != nil {
		var aerr *auth.Error
		if errors.As(err, &aerr) {
			c.alert.Alert(aerr.Message)
			return
		}
		c.log.WithError(err).Error("login")
		c.alert.Alert(auth.MsgLoginFailed)
	}
}

func (c *Login) GoToSignup() {
	c.nav.Navigate(RouteSignup, nil)
}
