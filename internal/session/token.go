// ABOUTME: Session cookie values signed as HS256 JWTs
// ABOUTME: Tokens are bound to bookmarkd sessions by issuer and audience

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer   = "bookmarkd"
	tokenAudience = "bookmarkd-session"
)

var (
	// ErrInvalidToken covers malformed, tampered or foreign tokens.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrExpiredToken means the cookie outlived its lifetime.
	ErrExpiredToken = errors.New("session token expired")
	// ErrWrongAudience means the token was signed for something other than a session.
	ErrWrongAudience = errors.New("session token not issued for bookmarkd sessions")
	// ErrMissingSession means the token names no session id.
	ErrMissingSession = errors.New("session token has no session id")
)

// Signer turns session ids into cookie values and back.
type Signer struct {
	key []byte
}

// NewSigner creates a Signer keyed with secret.
func NewSigner(secret []byte) *Signer {
	return &Signer{key: secret}
}

// Sign returns a cookie value naming sessionID that expires after ttl.
func (s *Signer) Sign(sessionID string, ttl time.Duration) (string, error) {
	issued := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Verify checks a cookie value and returns the session id it carries.
// Only HS256 tokens issued for bookmarkd sessions are accepted.
func (s *Signer) Verify(value string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(value, &claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenInvalidAudience), errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "", fmt.Errorf("%w: %v", ErrWrongAudience, err)
	default:
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return "", ErrMissingSession
	}
	return claims.Subject, nil
}
