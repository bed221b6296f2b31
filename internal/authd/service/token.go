package service

import (
	"context"
	"fmt"
	"time"

	"github.com/archsystems/authgate/internal/authd/domain"
	"github.com/archsystems/authgate/pkg/jwtx"
)

// TokenService mints signed tokens for verified accounts.
type TokenService struct {
	Signer   jwtx.Signer
	Issuer   string
	Validity time.Duration
	Skew     time.Duration

	// Now is the clock; nil means time.Now. Tests pin it.
	Now func() time.Time
}

// IssuedToken pairs the compact token with the claims baked into it.
type IssuedToken struct {
	Token  string
	Claims jwtx.Claims
}

// Issue mints a token for the user. The token becomes usable after the
// configured skew grace and stays valid for the configured validity window
// from that point.
func (s *TokenService) Issue(ctx context.Context, u domain.User) (IssuedToken, error) {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	validity := s.Validity
	if validity <= 0 {
		validity = jwtx.DefaultValidity
	}

	claims := jwtx.NewClaims(u.ID, s.Issuer, validity, s.Skew, now)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}

	return IssuedToken{Token: token, Claims: claims}, nil
}
