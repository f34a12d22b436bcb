package httpapi

import (
	"regexp"

	"bizcard/internal/auth"
)

const maxEmailLength = 255

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterPattern = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
)

// validateEmail returns an empty string when the address is acceptable,
// otherwise a user-facing message.
func validateEmail(email string) string {
	if email == "" {
		return "email is required"
	}
	if len(email) > maxEmailLength {
		return "email is too long"
	}
	if !emailPattern.MatchString(email) {
		return "invalid email format"
	}
	return ""
}

// validatePassword enforces the policy: at least 8 characters with a
// letter and a digit, and within bcrypt's 72-byte input limit. Rejecting
// over-long passwords here avoids bcrypt's silent truncation.
func validatePassword(password string) string {
	if password == "" {
		return "password is required"
	}
	if len(password) < 8 {
		return "password must be at least 8 characters"
	}
	if len([]byte(password)) > auth.MaxPasswordBytes {
		return "password is too long"
	}
	if !letterPattern.MatchString(password) {
		return "password must contain a letter"
	}
	if !digitPattern.MatchString(password) {
		return "password must contain a digit"
	}
	return ""
}
