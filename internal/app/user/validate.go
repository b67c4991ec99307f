package user

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	MinUsernameLength = 2
	MaxUsernameLength = 40
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidUsername reports whether name has an acceptable display length.
// Spaces are allowed ("John Doe").
func ValidUsername(name string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n >= MinUsernameLength && n <= MaxUsernameLength
}

// ValidEmail reports whether email is a bare address without a display name.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// ValidPassword reports whether password fits bcrypt's input limits and our minimum.
func ValidPassword(password string) bool {
	return len(password) <= MaxPasswordLength && utf8.RuneCountInString(password) >= MinPasswordLength
}
