// Package token issues and verifies the HS256 bearer tokens used by API
// clients. Browser clients use session cookies instead.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuerName = "compreg"

// Verification errors.
var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token is expired")
)

// Claims carries the validated identity from a bearer token.
type Claims struct {
	AccountID string
	Role      string
}

// apiClaims is the internal claims type used for JWT parsing.
type apiClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Issuer signs and verifies API tokens with a shared HS256 secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates a token issuer.
// PRE: secret is non-empty; ttl > 0
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (i *Issuer) WithNow(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Issue signs a token for the account.
// PRE: accountID is non-empty
// POST: Returns a signed JWT valid for the configured TTL
func (i *Issuer) Issue(accountID, role string) (string, error) {
	if accountID == "" {
		return "", errors.New("account id cannot be empty")
	}
	now := i.now()
	claims := apiClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token.
// PRE: raw is the token string, without the "Bearer " prefix
// POST: Returns the claims, ErrExpiredToken, or ErrInvalidToken
func (i *Issuer) Verify(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrInvalidToken
	}

	var parsed apiClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuerName),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}
	if parsed.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{AccountID: parsed.Subject, Role: parsed.Role}, nil
}
