package auth

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// emailPattern is deliberately loose: something@something.something with no
// whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type loginInput struct {
	Email    string `validate:"required,loose_email"`
	Password string `validate:"required"`
}

type signupForm struct {
	Email           string `validate:"required,loose_email"`
	Password        string `validate:"required,min=8"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	FirstName       string `validate:"required"`
	LastName        string `validate:"required"`
	Role            string `validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("loose_email", looseEmail); err != nil {
		panic(err)
	}
	return v
}

func looseEmail(fl validator.FieldLevel) bool {
	return emailPattern.MatchString(fl.Field().String())
}

// firstMessage picks the message for the highest-priority failed rule, so
// the user sees one alert even when several fields are wrong.
func firstMessage(err error, byTag map[string]string, order []string) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		failed[fe.Tag()] = true
	}
	for _, tag := range order {
		if failed[tag] {
			return byTag[tag]
		}
	}
	return verrs[0].Error()
}

var (
	loginMessages = map[string]string{
		"required":    MsgLoginFieldsRequired,
		"loose_email": MsgInvalidEmailAddress,
	}
	loginOrder = []string{"required", "loose_email"}

	signupMessages = map[string]string{
		"required":    MsgSignupFieldsRequired,
		"loose_email": MsgInvalidEmailAddress,
		"min":         MsgPasswordTooShort,
		"eqfield":     MsgPasswordMismatch,
	}
	signupOrder = []string{"required", "loose_email", "min", "eqfield"}
)
