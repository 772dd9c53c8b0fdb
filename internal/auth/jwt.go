// Package auth provides session tokens (JWT), CLI publish tokens, the
// GitHub OAuth provider, and the HTTP middleware that ties them together.
//
// Two credentials exist side by side:
//
//   - Session JWTs, issued after GitHub OAuth login and carried in an
//     HttpOnly cookie. Short-lived; the browser's credential.
//   - Publish tokens, minted once and carried by the CLI in an
//     Authorization header. Long-lived; only the bcrypt hash is stored.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionLifetime is how long a session JWT (and its cookie) stays valid.
const SessionLifetime = 24 * time.Hour

// TokenService handles session JWT creation and validation. It holds the
// HMAC secret used to sign and verify tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The "sub" (Subject) claim carries the internal
// user ID.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new session token for the given userID,
// using HS256 and expiring after SessionLifetime.
func (s *TokenService) Generate(userID string) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionLifetime)),
			Issuer:    "clawhub",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string, returning the userID it was
// issued for. Fails on bad signatures, expiry, and algorithm confusion
// (only HS256 is accepted).
func (s *TokenService) Validate(tokenStr string) (string, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenStr, &c,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return "", fmt.Errorf("auth: parsing token: %w", err)
	}
	if !token.Valid || c.Subject == "" {
		return "", errors.New("auth: invalid token")
	}
	return c.Subject, nil
}
