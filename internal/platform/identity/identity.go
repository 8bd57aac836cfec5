// Package identity abstracts the identity provider that authenticates admins.
//
// Two providers are available: ToolkitProvider talks to the Firebase Identity
// Toolkit REST API, LocalProvider keeps bcrypt-hashed accounts in an
// AccountRepository and issues its own HS256 tokens. Both expose the live
// session through OnAuthStateChanged.
package identity

import (
	"context"
	"errors"
	"fmt"
)

// User is the signed-in account as the provider reports it.
type User struct {
	UID   string
	Email string
	Token string
}

type Provider interface {
	SignIn(ctx context.Context, email, password string) (User, error)
	// SignUp creates the account and leaves it signed in.
	SignUp(ctx context.Context, email, password string) (User, error)
	SignOut(ctx context.Context) error
	CurrentUser() (User, bool)
	// OnAuthStateChanged calls fn with the current user (nil when signed
	// out) right away and again after every change, until the returned
	// function is called.
	OnAuthStateChanged(fn func(*User)) (unsubscribe func())
}

// Provider error codes.
const (
	CodeInvalidEmail       = "auth/invalid-email"
	CodeUserNotFound       = "auth/user-not-found"
	CodeWrongPassword      = "auth/wrong-password"
	CodeInvalidCredential  = "auth/invalid-credential"
	CodeEmailAlreadyInUse  = "auth/email-already-in-use"
	CodeWeakPassword       = "auth/weak-password"
	CodeUserDisabled       = "auth/user-disabled"
	CodeTooManyRequests    = "auth/too-many-requests"
	CodeNetworkRequestFail = "auth/network-request-failed"
	CodeInternal           = "auth/internal-error"
)

// Error is a provider failure with a stable code.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Code returns the provider code carried by err, or "" when err is not a
// provider error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
