package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"booknest/internal/platform/docstore"
	"booknest/internal/platform/identity"
	"booknest/internal/platform/identity/mocks"
	"booknest/internal/profile"
	"booknest/internal/session"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type fixture struct {
	svc      *Service
	provider *identity.LocalProvider
	profiles *profile.Service
	cache    *session.MemoryCache
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	provider := identity.NewLocalProvider(identity.NewMemoryAccounts(), "secret", time.Hour)
	profiles := profile.NewService(profile.NewDocumentRepo(docstore.NewMemoryStore()))
	cache := session.NewMemoryCache()
	return fixture{
		svc:      NewService(provider, profiles, cache, logger),
		provider: provider,
		profiles: profiles,
		cache:    cache,
	}
}

// newMockedService returns a service whose provider fails the test on any
// unexpected call.
func newMockedService(t *testing.T) (*Service, *mocks.MockProvider) {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger, _ := test.NewNullLogger()
	provider := mocks.NewMockProvider(ctrl)
	profiles := profile.NewService(profile.NewDocumentRepo(docstore.NewMemoryStore()))
	return NewService(provider, profiles, session.NewMemoryCache(), logger), provider
}

func requireAuthError(t *testing.T, err error, kind Kind, msg string) {
	t.Helper()
	var aerr *Error
	require.True(t, errors.As(err, &aerr), "expected *auth.Error, got %v", err)
	assert.Equal(t, kind, aerr.Kind)
	assert.Equal(t, msg, aerr.Message)
}

func TestLogin_Validation(t *testing.T) {
	svc, _ := newMockedService(t)

	tests := []struct {
		name     string
		email    string
		password string
		msg      string
	}{
		{"both empty", "", "", MsgLoginFieldsRequired},
		{"blank email", "   ", "password123", MsgLoginFieldsRequired},
		{"blank password", "a@b.com", "  ", MsgLoginFieldsRequired},
		{"no at sign", "ab.com", "password123", MsgInvalidEmailAddress},
		{"no dot in domain", "a@b", "password123", MsgInvalidEmailAddress},
		{"inner space", "a b@c.com", "password123", MsgInvalidEmailAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.email, tt.password)
			requireAuthError(t, err, KindValidation, tt.msg)
		})
	}
}

func TestLogin_ProviderErrorMapping(t *testing.T) {
	tests := []struct {
		code string
		msg  string
	}{
		{identity.CodeInvalidEmail, MsgProviderInvalidEmail},
		{identity.CodeUserNotFound, MsgUserNotFound},
		{identity.CodeWrongPassword, MsgLoginFailed},
		{identity.CodeInvalidCredential, MsgLoginFailed},
		{identity.CodeTooManyRequests, MsgLoginFailed},
		{"", MsgLoginFailed},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			svc, provider := newMockedService(t)
			var providerErr error = &identity.Error{Code: tt.code}
			if tt.code == "" {
				providerErr = errors.New("connection refused")
			}
			provider.EXPECT().SignIn(gomock.Any(), "a@b.com", "password123").Return(identity.User{}, providerErr)

			_, err := svc.Login(context.Background(), "  a@b.com ", "password123")
			requireAuthError(t, err, KindProvider, tt.msg)
			assert.ErrorIs(t, err, providerErr)
		})
	}
}

func TestLogin_CachesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.provider.SignUp(ctx, "a@b.com", "password123")
	require.NoError(t, err)
	require.NoError(t, f.provider.SignOut(ctx))

	u, err := f.svc.Login(ctx, "a@b.com", "password123")
	require.NoError(t, err)

	tok, ok, err := f.cache.Get(session.TokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, u.Token, tok)
}

func TestLogin_BlankInputNeverReachesProvider(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		svc, _ := newMockedService(t)
		blank := rapid.StringOf(rapid.SampledFrom([]rune{' ', '\t', '\n'}))
		email := rapid.OneOf(blank, rapid.Just("a@b.com")).Draw(rt, "email")
		password := rapid.OneOf(blank, rapid.Just("password123")).Draw(rt, "password")
		if strings.TrimSpace(email) != "" && strings.TrimSpace(password) != "" {
			return
		}

		_, err := svc.Login(context.Background(), email, password)
		var aerr *Error
		if !errors.As(err, &aerr) || aerr.Kind != KindValidation || aerr.Message != MsgLoginFieldsRequired {
			rt.Fatalf("email=%q password=%q: got %v", email, password, err)
		}
	})
}

func validSignup() SignupInput {
	return SignupInput{
		Email:           "a@b.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Role:            "admin",
		Birthdate:       time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
	}
}

func TestSignup_Validation(t *testing.T) {
	svc, _ := newMockedService(t)

	tests := []struct {
		name   string
		mutate func(*SignupInput)
		msg    string
	}{
		{"missing role", func(in *SignupInput) { in.Role = "" }, MsgSignupFieldsRequired},
		{"missing confirmation", func(in *SignupInput) { in.ConfirmPassword = "" }, MsgSignupFieldsRequired},
		{"missing first name beats bad email", func(in *SignupInput) { in.FirstName = ""; in.Email = "bad" }, MsgSignupFieldsRequired},
		{"bad email", func(in *SignupInput) { in.Email = "a@b" }, MsgInvalidEmailAddress},
		{"short password", func(in *SignupInput) { in.Password = "short"; in.ConfirmPassword = "short" }, MsgPasswordTooShort},
		{"short beats mismatch", func(in *SignupInput) { in.Password = "short" }, MsgPasswordTooShort},
		{"mismatch", func(in *SignupInput) { in.ConfirmPassword = "password124" }, MsgPasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validSignup()
			tt.mutate(&in)
			_, err := svc.Signup(context.Background(), in)
			requireAuthError(t, err, KindValidation, tt.msg)
		})
	}
}

func TestSignup_WeakOrMismatchedPasswordNeverCreatesAccount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		svc, _ := newMockedService(t)
		in := validSignup()
		in.Password = rapid.StringN(1, 12, -1).Draw(rt, "password")
		in.ConfirmPassword = rapid.OneOf(rapid.Just(in.Password), rapid.StringN(1, 12, -1)).Draw(rt, "confirm")
		if len([]rune(in.Password)) >= 8 && in.Password == in.ConfirmPassword {
			return
		}

		_, err := svc.Signup(context.Background(), in)
		var aerr *Error
		if !errors.As(err, &aerr) || aerr.Kind != KindValidation {
			rt.Fatalf("password=%q confirm=%q: got %v", in.Password, in.ConfirmPassword, err)
		}
	})
}

func TestSignup_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	f.svc.now = func() time.Time { return created }

	uid, err := f.svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	p, err := f.profiles.Load(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, uid, p.UID)
	assert.Equal(t, "Ada", p.FirstName)
	assert.Equal(t, "Lovelace", p.LastName)
	assert.Equal(t, "admin", p.Role)
	assert.True(t, validSignup().Birthdate.Equal(p.Birthdate))
	assert.True(t, created.Equal(p.CreatedAt))

	_, signedIn := f.provider.CurrentUser()
	assert.False(t, signedIn, "signup must leave the session signed out")

	_, err = f.svc.Login(ctx, "a@b.com", "password123")
	assert.NoError(t, err)
}

func TestSignup_DefaultsBirthdateToNow(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	in := validSignup()
	in.Birthdate = time.Time{}
	uid, err := f.svc.Signup(context.Background(), in)
	require.NoError(t, err)

	p, err := f.profiles.Load(context.Background(), uid)
	require.NoError(t, err)
	assert.True(t, now.Equal(p.Birthdate))
}

func TestSignup_ProviderFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	_, err = f.svc.Signup(ctx, validSignup())
	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, KindProvider, aerr.Kind)
	assert.True(t, strings.HasPrefix(aerr.Message, "Sign Up Failed: "))
	assert.Contains(t, aerr.Message, identity.CodeEmailAlreadyInUse)
}

type failingProfiles struct{}

func (failingProfiles) Create(context.Context, profile.Profile) error {
	return errors.New("permission denied")
}

func TestSignup_ProfileWriteFailureStillSignsOut(t *testing.T) {
	logger, hook := test.NewNullLogger()
	provider := identity.NewLocalProvider(identity.NewMemoryAccounts(), "secret", time.Hour)
	svc := NewService(provider, failingProfiles{}, session.NewMemoryCache(), logger)

	_, err := svc.Signup(context.Background(), validSignup())
	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, "Sign Up Failed: permission denied", aerr.Message)

	_, signedIn := provider.CurrentUser()
	assert.False(t, signedIn)
	assert.NotEmpty(t, hook.AllEntries())
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.provider.SignUp(ctx, "a@b.com", "password123")
	require.NoError(t, err)
	require.NoError(t, f.provider.SignOut(ctx))
	_, err = f.svc.Login(ctx, "a@b.com", "password123")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx))

	_, ok, _ := f.cache.Get(session.TokenKey)
	assert.False(t, ok)
	_, signedIn := f.provider.CurrentUser()
	assert.False(t, signedIn)
}

func TestNewValidator_RegistersLooseEmail(t *testing.T) {
	var err error
	require.NotPanics(t, func() {
		v := newValidator()
		err = v.Struct(loginInput{Email: "no-at-sign", Password: "x"})
	})
	require.Error(t, err)
	assert.Equal(t, MsgInvalidEmailAddress, firstMessage(err, loginMessages, loginOrder))
}
