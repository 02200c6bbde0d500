// Package token issues and verifies the signed session tokens that userboard
// stores in the session cookie. A token is self-contained: it carries the
// user ID and an expiry, signed with HMAC-SHA256 under a secret injected at
// construction time. There is no server-side session store.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures. Callers that resolve request identity treat both
// the same way (unresolved); the distinction exists for logging only.
var (
	// ErrTokenInvalid means the token is malformed or its signature does
	// not match.
	ErrTokenInvalid = errors.New("invalid session token")

	// ErrTokenExpired means the token was well-formed and correctly signed
	// but is past its expiry.
	ErrTokenExpired = errors.New("expired session token")
)

// Claims is the token payload: the user ID plus the registered expiry claim.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// Service signs and verifies session tokens with a fixed secret and TTL.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a token service. The secret comes from configuration;
// it is never read from the environment here.
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue creates a signed token for the given user, valid for the service TTL.
func (s *Service) Issue(userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature and expiry of a token and returns the user ID
// it carries. Returns ErrTokenExpired for a correctly signed but stale token
// and ErrTokenInvalid for everything else.
func (s *Service) Verify(tokenString string) (int64, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		// Only HMAC is acceptable; reject tokens re-signed with "none" or
		// an asymmetric method.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}

	if !parsed.Valid {
		return 0, ErrTokenInvalid
	}

	return claims.UserID, nil
}
