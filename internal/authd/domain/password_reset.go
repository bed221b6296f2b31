package domain

import "time"

// PasswordReset records an outstanding forgotten-password token. Only the
// fingerprint of the token is stored; the token itself goes out by email and
// is never persisted.
type PasswordReset struct {
	ID               string
	UserID           string
	TokenFingerprint string
	ExpiresAt        time.Time
	Used             bool
	CreatedAt        time.Time
}

// Expired reports whether the reset can no longer be redeemed at now.
func (p PasswordReset) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
