package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/archsystems/authgate/internal/authd/domain"
	"github.com/archsystems/authgate/internal/authd/store"
	"github.com/archsystems/authgate/pkg/cryptox"
	"github.com/archsystems/authgate/pkg/idx"
	"github.com/archsystems/authgate/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUsernameTaken      = errors.New("username_taken")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidResetToken  = errors.New("invalid_reset_token")
	ErrWeakPassword       = errors.New("weak_password")
)

// MinPasswordLength is the smallest password the service will accept.
const MinPasswordLength = 8

// ResetTokenTTL is how long a forgotten-password token stays redeemable.
const ResetTokenTTL = time.Hour

// AccountService owns the credential lifecycle: verifying logins, creating
// accounts and running the forgotten-password flow.
type AccountService struct {
	Store  store.Store
	Mailer Mailer
}

// Authenticate verifies a username and password pair. Unknown usernames and
// wrong passwords both return ErrInvalidCredentials so the response does not
// reveal which accounts exist.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time so the caller can't distinguish an unknown
			// username from a wrong password by latency.
			_ = cryptox.VerifyPassword(password, decoyHash)
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if cryptox.VerifyPassword(password, u.PasswordHash) != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	return u, nil
}

// Register creates a new account with the default role.
func (s *AccountService) Register(ctx context.Context, username, email, password, nicename string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if len(password) < MinPasswordLength {
		return domain.User{}, ErrWeakPassword
	}
	if nicename == "" {
		nicename = username
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Nicename:     nicename,
		Email:        email,
		PasswordHash: hash,
		Roles:        []string{domain.DefaultRole},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// The unique index fired for either username or email; check
			// which so the caller gets an actionable answer.
			if _, lookupErr := s.Store.Users().GetUserByUsername(ctx, username); lookupErr == nil {
				return domain.User{}, ErrUsernameTaken
			}
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

// StartPasswordReset issues a reset token for the account behind email and
// mails it out. An unknown email is NOT an error; the flow reports success
// either way so it cannot be used to enumerate accounts.
func (s *AccountService) StartPasswordReset(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	now := time.Now().UTC()
	reset := domain.PasswordReset{
		ID:               idx.New().String(),
		UserID:           u.ID,
		TokenFingerprint: cryptox.FingerprintToken(token),
		ExpiresAt:        now.Add(ResetTokenTTL),
		CreatedAt:        now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.PasswordResets().InvalidateUserResets(ctx, u.ID); err != nil {
			return err
		}
		return tx.PasswordResets().CreatePasswordReset(ctx, reset)
	})
	if err != nil {
		return fmt.Errorf("store reset: %w", err)
	}

	if err := s.Mailer.SendPasswordReset(ctx, u.Email, token); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	log.Info("password reset issued", "user_id", u.ID)
	return nil
}

// CompletePasswordReset redeems a reset token and sets the new password. The
// token is single use; outstanding tokens for the account die with it.
func (s *AccountService) CompletePasswordReset(ctx context.Context, email, token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	reset, err := s.Store.PasswordResets().GetActiveResetByFingerprint(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("lookup reset: %w", err)
	}

	if reset.UserID != u.ID {
		return ErrInvalidResetToken
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.PasswordResets().MarkResetUsed(ctx, reset.ID); err != nil {
			return err
		}
		if err := tx.PasswordResets().InvalidateUserResets(ctx, u.ID); err != nil {
			return err
		}
		return tx.Users().UpdatePasswordHash(ctx, u.ID, hash)
	})
}

// ChangePassword sets a new password for an authenticated caller after
// re-verifying the current one.
func (s *AccountService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	if cryptox.VerifyPassword(currentPassword, u.PasswordHash) != nil {
		return ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.Store.Users().UpdatePasswordHash(ctx, u.ID, hash)
}

// GetUserByID fetches a user by id.
func (s *AccountService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// decoyHash is a valid argon2id hash of a throwaway value, used to equalise
// timing when the username is unknown.
var decoyHash = func() string {
	h, err := cryptox.HashPassword("decoy")
	if err != nil {
		panic(err)
	}
	return h
}()
