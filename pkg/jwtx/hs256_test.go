package jwtx_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/archsystems/authgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-at-least-32-bytes-long!!")

func issueTestToken(t *testing.T, userID string) string {
	t.Helper()

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)

	// Zero skew so the token is valid the instant it is minted.
	claims := jwtx.NewClaims(userID, "archsystems", time.Hour, 0, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)
	return token
}

func TestSignerRequiresSecret(t *testing.T) {
	_, err := jwtx.NewSignerHS256(nil)
	require.ErrorIs(t, err, jwtx.ErrNoSecret)

	_, err = jwtx.NewVerifierHS256([]byte{}, "archsystems")
	require.ErrorIs(t, err, jwtx.ErrNoSecret)
}

func TestRoundTrip(t *testing.T) {
	token := issueTestToken(t, "user-123")

	verifier, err := jwtx.NewVerifierHS256(testSecret, "archsystems")
	require.NoError(t, err)

	claims, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Data.UserID)
	require.Equal(t, "archsystems", claims.Issuer)
	require.NotEmpty(t, claims.ID)
}

func TestTokensAreNeverIdentical(t *testing.T) {
	a := issueTestToken(t, "user-123")
	b := issueTestToken(t, "user-123")
	require.NotEqual(t, a, b)
}

func TestTamperedSignatureRejected(t *testing.T) {
	token := issueTestToken(t, "user-123")

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Flip one character of the signature segment.
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	verifier, err := jwtx.NewVerifierHS256(testSecret, "archsystems")
	require.NoError(t, err)

	_, err = verifier.Verify(tampered)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestSecretIsolation(t *testing.T) {
	token := issueTestToken(t, "user-123")

	verifier, err := jwtx.NewVerifierHS256([]byte("a-completely-different-secret-value"), "archsystems")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestIssuerMismatchRejected(t *testing.T) {
	token := issueTestToken(t, "user-123")

	verifier, err := jwtx.NewVerifierHS256(testSecret, "other-host")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestAlgorithmConfusionRejected(t *testing.T) {
	verifier, err := jwtx.NewVerifierHS256(testSecret, "archsystems")
	require.NoError(t, err)

	token := issueTestToken(t, "user-123")
	parts := strings.Split(token, ".")

	t.Run("alg none", func(t *testing.T) {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
		forged := header + "." + parts[1] + "."
		_, err := verifier.Verify(forged)
		require.ErrorIs(t, err, jwtx.ErrAlgMismatch)
	})

	t.Run("alg RS256", func(t *testing.T) {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
		forged := header + "." + parts[1] + "." + parts[2]
		_, err := verifier.Verify(forged)
		require.ErrorIs(t, err, jwtx.ErrAlgMismatch)
	})
}

func TestMalformedTokensRejected(t *testing.T) {
	verifier, err := jwtx.NewVerifierHS256(testSecret, "archsystems")
	require.NoError(t, err)

	for _, tok := range []string{"", "not-a-token", "a.b", "!!!.???.###"} {
		_, err := verifier.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrMalformed, "token %q", tok)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)

	// Issued two hours ago with a one hour window.
	claims := jwtx.NewClaims("user-123", "archsystems", time.Hour, 0, time.Now().UTC().Add(-2*time.Hour))
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	verifier, err := jwtx.NewVerifierHS256(testSecret, "archsystems")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestNotYetValidTokenRejected(t *testing.T) {
	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)

	// Valid signature, but nbf is an hour out.
	claims := jwtx.NewClaims("user-123", "archsystems", time.Hour, time.Hour, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	verifier, err := jwtx.NewVerifierHS256(testSecret, "archsystems")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrNotYetValid)
}
