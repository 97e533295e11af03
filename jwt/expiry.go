package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned when the token cannot be decoded or carries
// no exp claim. Callers fall back to their configured default TTL.
var ErrNoExpiry = errors.New("token carries no usable expiry")

// Expiry returns the exp claim of a JWT bearer token, parsed without
// signature verification.
func Expiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, errors.Join(ErrNoExpiry, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}
