package identity

import (
	"fmt"
	"regexp"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether the address is plausibly deliverable.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePassword enforces the service's password policy: at least 8
// characters with one uppercase letter, one lowercase letter, and one
// digit. The returned error wraps [ErrInvalidCredentials] so callers
// render it inline like any other rejection.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", ErrInvalidCredentials)
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return fmt.Errorf("%w: password must contain an uppercase letter, a lowercase letter, and a number", ErrInvalidCredentials)
	}
	return nil
}
