// Package auth verifies bearer tokens and carries the caller's identity
// through the request context. Tokens are issued elsewhere; this service only
// checks HS256 signatures.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"kargo/internal/core/domain/model/kernel"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Principal is the authenticated caller.
type Principal struct {
	UserID kernel.UUID
	Role   kernel.Role
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

// Parse validates an HS256 token and returns its subject and role.
func Parse(token, secret string) (Principal, error) {
	if secret == "" {
		return Principal{}, errors.New("jwt secret is empty")
	}

	tok, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, errors.Join(ErrInvalidToken, err)
	}

	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return Principal{}, ErrInvalidToken
	}

	userID, err := kernel.UUIDFromString(c.Subject)
	if err != nil {
		return Principal{}, errors.Join(ErrInvalidToken, err)
	}
	role, err := kernel.ParseRole(c.Role)
	if err != nil {
		return Principal{}, errors.Join(ErrInvalidToken, err)
	}

	return Principal{UserID: userID, Role: role}, nil
}

// Sign creates a token for p valid for ttl. It backs the seed command and
// tests; the API never hands out tokens.
func Sign(p Principal, secret string, ttl time.Duration, now time.Time) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: p.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return tok.SignedString([]byte(secret))
}
