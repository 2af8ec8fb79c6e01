package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the fields the remote service embeds in its bearer
// tokens. The token is verified by the remote service, never locally; we
// only decode it to fill gaps in the login payload and to warn when a
// stored session has already expired.
type SessionClaims struct {
	UserID   string `json:"id"`
	Phone    string `json:"phone"`
	RoleName string `json:"roleName"`
	jwt.RegisteredClaims
}

var ErrMalformedToken = errors.New("malformed bearer token")

// ParseSessionClaims decodes a remote bearer token without verifying its
// signature. The signing key belongs to the remote service.
func ParseSessionClaims(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

// TokenExpired reports whether the token carries an exp claim in the past.
// A token we cannot decode is treated as not expired; the remote 401 is
// authoritative either way.
func TokenExpired(tokenString string) bool {
	claims, err := ParseSessionClaims(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return time.Now().After(claims.ExpiresAt.Time)
}
