package service

import (
	"context"
	"testing"

	"github.com/archsystems/authgate/internal/authd/store"
	"github.com/archsystems/authgate/internal/authd/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

// recordingMailer captures outgoing reset tokens for assertions.
type recordingMailer struct {
	to    []string
	token string
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.to = append(m.to, email)
	m.token = token
	return nil
}

func newTestAccountService(t *testing.T) (*AccountService, *recordingMailer) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())

	mailer := &recordingMailer{}
	return &AccountService{Store: st, Mailer: mailer}, mailer
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAccountService(t)

	created, err := svc.Register(ctx, "alice", "Alice@Example.com", "a-long-password", "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "alice@example.com", created.Email)
	require.Equal(t, []string{"subscriber"}, created.Roles)

	got, err := svc.Authenticate(ctx, "alice", "a-long-password")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "alice", got.Username)
}

func TestAuthenticateFailures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAccountService(t)

	_, err := svc.Register(ctx, "alice", "alice@example.com", "a-long-password", "")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "alice", "not-the-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody", "a-long-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAccountService(t)

	_, err := svc.Register(ctx, "alice", "alice@example.com", "a-long-password", "")
	require.NoError(t, err)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, "alice", "other@example.com", "a-long-password", "")
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "bob", "alice@example.com", "a-long-password", "")
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.Register(ctx, "carol", "carol@example.com", "short", "")
		require.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Register(ctx, "", "dave@example.com", "a-long-password", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newTestAccountService(t)

	_, err := svc.Register(ctx, "alice", "alice@example.com", "old-password-1", "")
	require.NoError(t, err)

	require.NoError(t, svc.StartPasswordReset(ctx, "alice@example.com"))
	require.Equal(t, []string{"alice@example.com"}, mailer.to)
	require.NotEmpty(t, mailer.token)

	require.NoError(t, svc.CompletePasswordReset(ctx, "alice@example.com", mailer.token, "new-password-1"))

	_, err = svc.Authenticate(ctx, "alice", "old-password-1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "alice", "new-password-1")
	require.NoError(t, err)

	t.Run("token is single use", func(t *testing.T) {
		err := svc.CompletePasswordReset(ctx, "alice@example.com", mailer.token, "another-password")
		require.ErrorIs(t, err, ErrInvalidResetToken)
	})
}

func TestPasswordResetUnknownEmailSucceeds(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newTestAccountService(t)

	// No error and no mail; the response must not reveal unknown accounts.
	require.NoError(t, svc.StartPasswordReset(ctx, "nobody@example.com"))
	require.Empty(t, mailer.to)
}

func TestPasswordResetNewTokenSupersedesOld(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newTestAccountService(t)

	_, err := svc.Register(ctx, "alice", "alice@example.com", "old-password-1", "")
	require.NoError(t, err)

	require.NoError(t, svc.StartPasswordReset(ctx, "alice@example.com"))
	first := mailer.token

	require.NoError(t, svc.StartPasswordReset(ctx, "alice@example.com"))
	second := mailer.token
	require.NotEqual(t, first, second)

	err = svc.CompletePasswordReset(ctx, "alice@example.com", first, "new-password-1")
	require.ErrorIs(t, err, ErrInvalidResetToken)

	require.NoError(t, svc.CompletePasswordReset(ctx, "alice@example.com", second, "new-password-1"))
}

func TestCompletePasswordResetRejectsForeignToken(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newTestAccountService(t)

	_, err := svc.Register(ctx, "alice", "alice@example.com", "password-alice", "")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "bob", "bob@example.com", "password-bobby", "")
	require.NoError(t, err)

	require.NoError(t, svc.StartPasswordReset(ctx, "alice@example.com"))

	// Bob cannot redeem Alice's token against his own account.
	err = svc.CompletePasswordReset(ctx, "bob@example.com", mailer.token, "new-password-1")
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAccountService(t)

	u, err := svc.Register(ctx, "alice", "alice@example.com", "old-password-1", "")
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, u.ID, "not-it", "new-password-1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("weak new password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, u.ID, "old-password-1", "short")
		require.ErrorIs(t, err, ErrWeakPassword)
	})

	require.NoError(t, svc.ChangePassword(ctx, u.ID, "old-password-1", "new-password-1"))

	_, err = svc.Authenticate(ctx, "alice", "new-password-1")
	require.NoError(t, err)
}

func TestHousekeepingDeletesDeadResets(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newTestAccountService(t)

	_, err := svc.Register(ctx, "alice", "alice@example.com", "old-password-1", "")
	require.NoError(t, err)
	require.NoError(t, svc.StartPasswordReset(ctx, "alice@example.com"))
	require.NoError(t, svc.CompletePasswordReset(ctx, "alice@example.com", mailer.token, "new-password-1"))

	st := svc.Store
	require.NoError(t, st.PasswordResets().DeleteExpiredResets(ctx))

	// The used reset is gone, so the fingerprint no longer resolves.
	_, err = st.PasswordResets().GetActiveResetByFingerprint(ctx, "anything")
	require.ErrorIs(t, err, store.ErrNotFound)
}
