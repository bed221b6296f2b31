package jwtx

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a token string and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrNoSecret    = errors.New("jwtx: signing secret not configured")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// HS256Verifier validates tokens signed with the shared HMAC-SHA-256 secret.
type HS256Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewVerifierHS256 creates a verifier bound to the same secret used at
// issuance. Issuer is enforced when non-empty.
func NewVerifierHS256(secret []byte, issuer string) (*HS256Verifier, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}

	return &HS256Verifier{secret: secret, issuer: issuer, now: time.Now}, nil
}

// Verify parses the compact token, checks the declared algorithm, verifies
// the signature and then the timestamp/issuer claims. The clock is read per
// call, never cached.
func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	// Reject anything that doesn't declare our one configured algorithm
	// before touching the signature. "alg":"none" and downgrade tricks die
	// here even though the parser below enforces the same thing.
	if err := checkDeclaredAlg(tokenStr, jwt.SigningMethodHS256.Alg()); err != nil {
		return Claims{}, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(), // expiry is classified below, not by the parser
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		default:
			return Claims{}, ErrInvalidSig
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Claims{}, ErrMalformed
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryAt(v.now().UTC()); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}

// checkDeclaredAlg decodes the token header and compares its alg field
// against the single algorithm this service supports.
func checkDeclaredAlg(tokenStr, want string) error {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return ErrMalformed
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrMalformed
	}

	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return ErrMalformed
	}

	if header.Alg != want {
		return ErrAlgMismatch
	}

	return nil
}
