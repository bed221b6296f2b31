package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign token claims.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs claims with a single symmetric HMAC-SHA-256 secret.
type HS256Signer struct {
	secret []byte
	alg    string
}

// NewSignerHS256 creates an HS256 signer from the process-wide secret.
//
// An empty secret is a configuration error, full stop. Earlier incarnations
// of this service fell back to a pseudo-random value when the secret was
// missing, which silently produced tokens nobody could verify across
// restarts. We refuse to start instead.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}

	return &HS256Signer{
		secret: secret,
		alg:    jwt.SigningMethodHS256.Alg(),
	}, nil
}

func (s *HS256Signer) Alg() string { return s.alg }

// Sign takes your claims and turns them into a compact signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}
