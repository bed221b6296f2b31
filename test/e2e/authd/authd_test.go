package authd_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpapi "github.com/archsystems/authgate/internal/authd/http"
	"github.com/archsystems/authgate/internal/authd/service"
	"github.com/archsystems/authgate/internal/authd/store/drivers/sqlite"
	"github.com/archsystems/authgate/pkg/authsdk"
	"github.com/archsystems/authgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

/*
 * End-to-end tests running the full HTTP surface in-process and driving it
 * through the SDK client, the same way a downstream service would.
 */

const (
	e2eIssuer = "authgate-e2e"
	password  = "A-solid-password-1"
)

var signingSecret = []byte("e2e-signing-secret-do-not-reuse")

type capturedMail struct {
	token string
}

func (m *capturedMail) SendPasswordReset(_ context.Context, _, token string) error {
	m.token = token
	return nil
}

func startService(t *testing.T) (*authsdk.Client, *capturedMail) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256(signingSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(signingSecret, e2eIssuer)
	require.NoError(t, err)

	mail := &capturedMail{}

	router := httpapi.NewRouter(verifier, "e2e", st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router.AccountService = &service.AccountService{Store: st, Mailer: mail}
	router.TokenService = &service.TokenService{
		Signer:   signer,
		Issuer:   e2eIssuer,
		Validity: time.Hour,
	}
	router.AllowRegistration = true
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return authsdk.NewClient(srv.URL), mail
}

func TestFullCredentialLifecycle(t *testing.T) {
	ctx := context.Background()
	client, mail := startService(t)

	reg, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: password,
		Nicename: "Alice",
	})
	require.NoError(t, err)
	require.NotEmpty(t, reg.UserID)

	login, err := client.Login(ctx, "alice", password)
	require.NoError(t, err)
	require.NotEmpty(t, login.JWT)
	require.Equal(t, reg.UserID, login.UserID)
	require.Equal(t, "Alice", login.UserNicename)

	me, err := client.Me(ctx, login.JWT)
	require.NoError(t, err)
	require.Equal(t, reg.UserID, me.UserID)
	require.Equal(t, "alice", me.UserLogin)
	require.Greater(t, me.TokenExpires, time.Now().Unix())

	require.NoError(t, client.ResetPassword(ctx, "alice@example.com"))
	require.NotEmpty(t, mail.token)

	require.NoError(t, client.ChangePassword(ctx, authsdk.ChangePasswordRequest{
		Email:       "alice@example.com",
		ResetToken:  mail.token,
		NewPassword: "Another-solid-password-1",
	}))

	_, err = client.Login(ctx, "alice", password)
	require.True(t, authsdk.IsCode(err, "invalid_credentials"))

	relogin, err := client.Login(ctx, "alice", "Another-solid-password-1")
	require.NoError(t, err)
	require.NotEmpty(t, relogin.JWT)
}

func TestTokensFromOtherDeploymentsRejected(t *testing.T) {
	ctx := context.Background()
	client, _ := startService(t)

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: password,
	})
	require.NoError(t, err)

	// A token signed with a different secret must not verify here.
	foreignSigner, err := jwtx.NewSignerHS256([]byte("some-other-secret"))
	require.NoError(t, err)
	claims := jwtx.NewClaims("user-x", e2eIssuer, time.Hour, 0, time.Now().UTC())
	foreign, err := foreignSigner.Sign(claims)
	require.NoError(t, err)

	_, err = client.Me(ctx, foreign)
	require.True(t, authsdk.IsCode(err, "invalid_token"))

	apiErr := err.(*authsdk.APIError)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestHealthProbes(t *testing.T) {
	ctx := context.Background()
	client, _ := startService(t)

	require.NoError(t, client.Livez(ctx))
	require.NoError(t, client.Readyz(ctx))
}
