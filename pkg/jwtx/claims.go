package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default lifetimes for issued tokens. Services can (and should) override
// the validity window through configuration; these are just the fallbacks.
const (
	// DefaultValidity is how long a token stays usable after nbf.
	DefaultValidity = 24 * time.Hour

	// DefaultSkewGrace is the deliberate gap between iat and nbf. It absorbs
	// small clock drift between the issuing host and whoever validates next.
	DefaultSkewGrace = 10 * time.Second
)

// Subject is the nested payload identifying who the token was minted for.
type Subject struct {
	// UserID is the identity provider's unique user identifier.
	UserID string `json:"userId"`
}

// Claims is the full token payload: the registered timestamp/issuer claims
// plus our nested subject data.
type Claims struct {
	jwt.RegisteredClaims

	Data Subject `json:"data"`
}

// NewClaims builds claims for a freshly issued token:
//
//	iat = now
//	nbf = now + skew
//	exp = nbf + validity
//	jti = fresh 32-byte random identifier
//
// Two calls with identical inputs never produce equal claims because of jti.
func NewClaims(userID, issuer string, validity, skew time.Duration, now time.Time) Claims {
	notBefore := now.Add(skew)
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(notBefore),
			ExpiresAt: jwt.NewNumericDate(notBefore.Add(validity)),
			ID:        NewJTI(),
		},
		Data: Subject{UserID: userID},
	}
}

// NewJTI returns a random identifier for the "jti" claim. 32 bytes from
// crypto/rand, base64 encoded. Never derived from anything, never reused.
func NewJTI() string {
	var b [32]byte
	_, _ = rand.Read(b[:])
	return base64.StdEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it becomes valid (nbf), against the current wall clock.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryAt(time.Now().UTC())
}

// ValidateExpiryAt is ValidateExpiry against an explicit instant. The
// boundaries are inclusive: a token with exp == now or nbf == now passes.
func (c *Claims) ValidateExpiryAt(now time.Time) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
