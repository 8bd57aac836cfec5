package identity

import (
	"context"
	"errors"
	"time"

	"booknest/internal/platform/crypto"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const defaultTokenTTL = time.Hour

// LocalProvider authenticates against an AccountRepository and issues its own
// ID tokens. It mirrors the hosted provider's error codes.
type LocalProvider struct {
	accounts AccountRepository
	secret   string
	ttl      time.Duration
	validate *validator.Validate
	now      func() time.Time
	state    authState
}

func NewLocalProvider(accounts AccountRepository, secret string, ttl time.Duration) *LocalProvider {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &LocalProvider{
		accounts: accounts,
		secret:   secret,
		ttl:      ttl,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (User, error) {
	if err := p.validate.Var(email, "required,email"); err != nil {
		return User{}, newError(CodeInvalidEmail, "The email address is badly formatted.")
	}
	a, err := p.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return User{}, newError(CodeUserNotFound, "There is no user record corresponding to this identifier.")
		}
		return User{}, &Error{Code: CodeInternal, Message: "account lookup failed", Err: err}
	}
	if !crypto.VerifyPassword(a.PasswordHash, password) {
		return User{}, newError(CodeWrongPassword, "The password is invalid.")
	}
	return p.signInAs(a)
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (User, error) {
	if err := p.validate.Var(email, "required,email"); err != nil {
		return User{}, newError(CodeInvalidEmail, "The email address is badly formatted.")
	}
	if err := crypto.ValidatePasswordStrength(password); err != nil {
		return User{}, &Error{Code: CodeWeakPassword, Message: "Password should be at least 6 characters.", Err: err}
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return User{}, &Error{Code: CodeInternal, Message: "password hashing failed", Err: err}
	}

	a := Account{
		UID:          uuid.New().String(),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    p.now().UTC(),
	}
	if err := p.accounts.Create(ctx, a); err != nil {
		if errors.Is(err, ErrAccountExists) {
			return User{}, newError(CodeEmailAlreadyInUse, "The email address is already in use by another account.")
		}
		return User{}, &Error{Code: CodeInternal, Message: "account creation failed", Err: err}
	}
	return p.signInAs(a)
}

func (p *LocalProvider) SignOut(ctx context.Context) error {
	p.state.set(nil)
	return nil
}

func (p *LocalProvider) CurrentUser() (User, bool) {
	return p.state.current()
}

func (p *LocalProvider) OnAuthStateChanged(fn func(*User)) func() {
	return p.state.subscribe(fn)
}

// Token returns the current ID token, or "" when signed out.
func (p *LocalProvider) Token() string {
	return p.state.token()
}

// verify checks an ID token issued by this provider and returns its subject.
func (p *LocalProvider) verify(token string) (string, error) {
	claims, err := crypto.ParseToken(p.secret, token)
	if err != nil {
		return "", err
	}
	return claims.Sub, nil
}

func (p *LocalProvider) signInAs(a Account) (User, error) {
	token, _, err := crypto.GenerateToken(p.secret, a.UID, a.Email, p.ttl)
	if err != nil {
		return User{}, &Error{Code: CodeInternal, Message: "token signing failed", Err: err}
	}
	u := User{UID: a.UID, Email: a.Email, Token: token}
	p.state.set(&u)
	return u, nil
}
