package store

import (
	"context"
	"errors"

	"github.com/archsystems/authgate/internal/authd/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this.
// Sub-repositories are exposed as methods to keep concerns separated and to
// stop callers from accidentally opening transactions inside transactions.
type Store interface {
	Users() Users
	PasswordResets() PasswordResets

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn returns
	// an error and committing otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Same repos, plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during credential checks.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail is used during the forgotten-password flow.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the username or email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// DeleteUser cascades to password_resets (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type PasswordResets interface {
	// CreatePasswordReset writes a new reset record. token_fingerprint is the
	// SHA-256 fingerprint of the opaque token, never the token itself.
	CreatePasswordReset(ctx context.Context, r domain.PasswordReset) error

	// GetActiveResetByFingerprint returns a not-used, not-expired reset.
	GetActiveResetByFingerprint(ctx context.Context, fingerprint string) (domain.PasswordReset, error)

	// MarkResetUsed sets used=1 so the token cannot be redeemed twice.
	MarkResetUsed(ctx context.Context, resetID string) error

	// InvalidateUserResets marks all outstanding resets for a user as used,
	// so a newly requested token supersedes older ones.
	InvalidateUserResets(ctx context.Context, userID string) error

	// DeleteExpiredResets is housekeeping.
	DeleteExpiredResets(ctx context.Context) error
}
