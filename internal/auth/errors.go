package auth

import "fmt"

type Kind int

const (
	// KindValidation means the input was rejected locally and the provider
	// was never called.
	KindValidation Kind = iota + 1
	// KindProvider means the provider or the profile write failed.
	KindProvider
)

// User-facing messages.
const (
	MsgLoginFieldsRequired  = "Please fill in both email and password."
	MsgInvalidEmailAddress  = "Please enter a valid email address."
	MsgProviderInvalidEmail = "Invalid email format."
	MsgUserNotFound         = "No account found with this email."
	MsgLoginFailed          = "Invalid username or password. Please try again."
	MsgSignupFieldsRequired = "All fields are required."
	MsgPasswordTooShort     = "Password must be at least 8 characters long."
	MsgPasswordMismatch     = "Passwords do not match."
	MsgSignupSucceeded      = "Account created! Please log in."
	signupFailedPrefix      = "Sign Up Failed: "
)

// Error carries the message to show the user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}
