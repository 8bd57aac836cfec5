package screen

import (
	"context"
	"errors"
	"sync"
	"time"

	"booknest/internal/auth"

	"github.com/sirupsen/logrus"
)

// Signup field names accepted by Set.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldRole            = "role"
)

type Signup struct {
	auth  *auth.Service
	nav   Navigator
	alert Alerter
	log   logrus.FieldLogger

	mu   sync.Mutex
	form auth.SignupInput
}

func NewSignup(authSvc *auth.Service, nav Navigator, alert Alerter, log logrus.FieldLogger) *Signup {
	return &Signup{
		auth:  authSvc,
		nav:   nav,
		alert: alert,
		log:   log.WithField("screen", "signup"),
	}
}

// Set updates one text field. It reports false for an unknown field.
func (c *Signup) Set(field, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch field {
	case FieldEmail:
		c.form.Email = value
	case FieldPassword:
		c.form.Password = value
	case FieldConfirmPassword:
		c.form.ConfirmPassword = value
	case FieldFirstName:
		c.form.FirstName = value
	case FieldLastName:
		c.form.LastName = value
	case FieldRole:
		c.form.Role = value
	default:
		return false
	}
	return true
}

func (c *Signup) SetBirthdate(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Birthdate = t
}

// Submit creates the account. On success the admin is sent back to log in.
func (c *Signup) Submit(ctx context.Context) bool {
	c.mu.Lock()
	form := c.form
	c.mu.Unlock()

	if _, err := c.auth.Signup(ctx, form); err != nil {
		var aerr *auth.Error
		if errors.As(err, &aerr) {
			c.alert.Alert(aerr.Message)
			return false
		}
		c.log.WithError(err).Error("signup")
		c.alert.Alert("Sign Up Failed: " + err.Error())
		return false
	}

	c.alert.Alert(auth.MsgSignupSucceeded)
	c.nav.Navigate(RouteLogin, nil)
	return true
}

func (c *Signup) GoToLogin() {
	c.nav.Navigate(RouteLogin, nil)
}
