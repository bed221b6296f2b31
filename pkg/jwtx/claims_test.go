package jwtx_test

import (
	"testing"
	"time"

	"github.com/archsystems/authgate/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewClaims(t *testing.T) {
	now := time.Unix(1000, 0).UTC()
	c := jwtx.NewClaims("42", "archsystems", 60*time.Second, 10*time.Second, now)

	t.Run("timestamp layout", func(t *testing.T) {
		require.Equal(t, int64(1000), c.IssuedAt.Unix())
		require.Equal(t, int64(1010), c.NotBefore.Unix())
		require.Equal(t, int64(1070), c.ExpiresAt.Unix())
	})

	t.Run("subject and issuer", func(t *testing.T) {
		require.Equal(t, "42", c.Data.UserID)
		require.Equal(t, "archsystems", c.Issuer)
	})

	t.Run("ordering invariants", func(t *testing.T) {
		require.False(t, c.NotBefore.Time.Before(c.IssuedAt.Time))
		require.True(t, c.ExpiresAt.Time.After(c.NotBefore.Time))
	})

	t.Run("jti is fresh per issuance", func(t *testing.T) {
		other := jwtx.NewClaims("42", "archsystems", 60*time.Second, 10*time.Second, now)
		require.NotEmpty(t, c.ID)
		require.NotEqual(t, c.ID, other.ID)
	})
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "archsystems",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("archsystems"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateIssuer("someone-else"), jwtx.ErrIssuer)
	})
}

func TestValidateExpiryAt(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(1 * time.Second)),
			},
		}
		require.NoError(t, claims.ValidateExpiryAt(now))
	})

	t.Run("expired one second ago", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Second)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiryAt(now), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				NotBefore: jwt.NewNumericDate(now.Add(1 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Hour)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiryAt(now), jwtx.ErrNotYetValid)
	})

	t.Run("nbf equal to now is accepted", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				NotBefore: jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			},
		}
		require.NoError(t, claims.ValidateExpiryAt(now))
	})

	t.Run("no exp or nbf", func(t *testing.T) {
		claims := &jwtx.Claims{}
		require.NoError(t, claims.ValidateExpiryAt(now))
	})
}

// The full lifecycle at fixed instants: issue at t=1000 with a 60s window and
// 10s grace, then probe before nbf, inside the window, and after exp.
func TestClaimsLifecycleWindow(t *testing.T) {
	issued := time.Unix(1000, 0).UTC()
	c := jwtx.NewClaims("42", "archsystems", 60*time.Second, 10*time.Second, issued)

	require.ErrorIs(t, c.ValidateExpiryAt(time.Unix(1005, 0).UTC()), jwtx.ErrNotYetValid)
	require.NoError(t, c.ValidateExpiryAt(time.Unix(1020, 0).UTC()))
	require.ErrorIs(t, c.ValidateExpiryAt(time.Unix(1100, 0).UTC()), jwtx.ErrExpired)
}
