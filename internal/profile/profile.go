package profile

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("profile not found")

// ISOLayout is the millisecond UTC form used for birthdate and createdAt.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// Profile is the admin's personal data, keyed by the auth UID.
type Profile struct {
	UID       string
	FirstName string
	LastName  string
	Role      string
	Birthdate time.Time
	CreatedAt time.Time
}

// FormatISO renders t the way profile documents store timestamps.
func FormatISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(ISOLayout)
}
