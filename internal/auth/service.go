// Package auth implements the login, signup and logout flows: local input
// checks, the provider call, and mapping provider failures to messages.
package auth

import (
	"context"
	"strings"
	"time"

	"booknest/internal/platform/identity"
	"booknest/internal/profile"
	"booknest/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ProfileWriter stores the profile created at signup.
type ProfileWriter interface {
	Create(ctx context.Context, p profile.Profile) error
}

// SignupInput is the signup form as typed.
type SignupInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Role            string
	// Birthdate defaults to the current time when zero.
	Birthdate time.Time
}

type Service struct {
	provider identity.Provider
	profiles ProfileWriter
	cache    session.Cache
	validate *validator.Validate
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(provider identity.Provider, profiles ProfileWriter, cache session.Cache, log logrus.FieldLogger) *Service {
	return &Service{
		provider: provider,
		profiles: profiles,
		cache:    cache,
		validate: newValidator(),
		log:      log.WithField("component", "auth"),
		now:      time.Now,
	}
}

// Login signs in and caches the ID token. Failures are *Error values whose
// Message is ready to show.
func (s *Service) Login(ctx context.Context, email, password string) (identity.User, error) {
	email = strings.TrimSpace(email)
	in := loginInput{Email: email, Password: strings.TrimSpace(password)}
	if err := s.validate.Struct(in); err != nil {
		return identity.User{}, validationError(firstMessage(err, loginMessages, loginOrder))
	}

	u, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return identity.User{}, &Error{Kind: KindProvider, Message: s.loginMessage(err), Err: err}
	}

	if err := s.cache.Set(session.TokenKey, u.Token); err != nil {
		s.log.WithError(err).Error("cache session token")
	}
	return u, nil
}

func (s *Service) loginMessage(err error) string {
	switch identity.Code(err) {
	case identity.CodeInvalidEmail:
		return MsgProviderInvalidEmail
	case identity.CodeUserNotFound:
		return MsgUserNotFound
	default:
		s.log.WithError(err).WithField("code", identity.Code(err)).Error("provider login error")
		return MsgLoginFailed
	}
}

// Signup creates the account and its profile document, then signs out so
// the admin has to log in explicitly. It returns the new UID.
func (s *Service) Signup(ctx context.Context, in SignupInput) (string, error) {
	form := signupForm{
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Role:            in.Role,
	}
	if err := s.validate.Struct(form); err != nil {
		return "", validationError(firstMessage(err, signupMessages, signupOrder))
	}

	u, err := s.provider.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		s.log.WithError(err).WithField("code", identity.Code(err)).Warn("provider signup error")
		return "", &Error{Kind: KindProvider, Message: signupFailedPrefix + err.Error(), Err: err}
	}

	now := s.now()
	birthdate := in.Birthdate
	if birthdate.IsZero() {
		birthdate = now
	}
	p := profile.Profile{
		UID:       u.UID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
		Birthdate: birthdate,
		CreatedAt: now,
	}
	writeErr := s.profiles.Create(ctx, p)

	// Leave the session signed out whether or not the profile write worked.
	if err := s.provider.SignOut(ctx); err != nil {
		s.log.WithError(err).Error("sign out after signup")
	}
	if writeErr != nil {
		s.log.WithError(writeErr).WithField("uid", u.UID).Error("write profile")
		return "", &Error{Kind: KindProvider, Message: signupFailedPrefix + writeErr.Error(), Err: writeErr}
	}
	return u.UID, nil
}

// Logout ends the provider session and drops the cached token.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		return err
	}
	if err := s.cache.Remove(session.TokenKey); err != nil {
		s.log.WithError(err).Error("clear session token")
	}
	return nil
}
