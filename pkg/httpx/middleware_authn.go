package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/archsystems/authgate/pkg/jwtx"
	"github.com/archsystems/authgate/pkg/slogx"
)

// AuthState is the terminal state of the per-request authentication
// decision: every request ends up anonymous, authenticated, or rejected.
type AuthState int

const (
	StateUnresolved AuthState = iota
	StateAnonymous
	StateAuthenticated
	StateRejected
)

// Rejection carries the classified failure from the decision point to the
// error-surfacing middleware. It is stored on the request context, never in
// process-wide state, so concurrent requests cannot observe each other's
// failures.
type Rejection struct {
	Status  int
	Code    string
	Message string
}

// AuthOutcome is the result of one authentication attempt.
type AuthOutcome struct {
	State     AuthState
	UserID    string
	Claims    jwtx.Claims
	Rejection *Rejection
}

// VerifyFunc validates a bearer token. Implementations may end up consulting
// other authentication hooks through ctx; Authenticate suspends itself on
// that context for the duration of the call.
type VerifyFunc func(ctx context.Context, token string) (jwtx.Claims, error)

// Authenticate runs the decision engine once for a set of request headers.
//
//   - A principal already on the context (resolved by some other mechanism,
//     e.g. a session cookie upstream) passes through untouched.
//   - No authorization header at all means the caller is anonymous. That is
//     not an error; plenty of routes are public.
//   - Anything else is validated and either yields a principal or a
//     classified rejection.
//
// While verify runs, the engine marks the context so a nested Authenticate
// call on the same request returns unresolved instead of recursing. A user
// lookup inside validation re-entering the current-user pipeline would
// otherwise loop forever.
func Authenticate(ctx context.Context, verify VerifyFunc, h http.Header) AuthOutcome {
	if uid := UserIDFromContext(ctx); uid != "" {
		return AuthOutcome{State: StateAuthenticated, UserID: uid}
	}

	if authenticating(ctx) {
		return AuthOutcome{State: StateUnresolved}
	}

	raw := AuthorizationHeader(h)
	if raw == "" {
		return AuthOutcome{State: StateAnonymous}
	}

	token := BearerToken(raw)
	if token == "" {
		return AuthOutcome{
			State: StateRejected,
			Rejection: &Rejection{
				Status:  http.StatusBadRequest,
				Code:    "missing_credential",
				Message: "authorization header does not contain a bearer token",
			},
		}
	}

	guarded := context.WithValue(ctx, authGuardKey{}, true)
	claims, err := verify(guarded, token)
	if err != nil {
		return AuthOutcome{State: StateRejected, Rejection: classifyAuthError(err)}
	}

	return AuthOutcome{State: StateAuthenticated, UserID: claims.Data.UserID, Claims: claims}
}

// AuthnMiddleware resolves the caller for every request and records the
// outcome on the context. It never writes a response itself: public routes
// serve anonymous and rejected callers alike, and RequireAuth surfaces the
// recorded rejection on protected ones.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	verify := func(_ context.Context, token string) (jwtx.Claims, error) {
		return v.Verify(token)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			outcome := Authenticate(ctx, verify, r.Header)
			ctx = contextWithOutcome(ctx, outcome)

			if outcome.State == StateAuthenticated && outcome.UserID != "" {
				ctx = contextWithAuth(ctx, outcome.Claims)
			}

			if outcome.State == StateRejected {
				log := slogx.FromContext(ctx)
				log.Warn("token verification failed",
					"code", outcome.Rejection.Code,
					"status", outcome.Rejection.Status,
				)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth is the error-surfacing hook. It inspects the outcome recorded
// by AuthnMiddleware and short-circuits with exactly one JSON error body for
// anything that is not an authenticated caller.
func RequireAuth() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			outcome := OutcomeFromContext(r.Context())

			switch outcome.State {
			case StateAuthenticated:
				next.ServeHTTP(w, r)
			case StateRejected:
				rej := outcome.Rejection
				WriteError(w, rej.Status, rej.Code, rej.Message)
			default:
				WriteError(w, http.StatusUnauthorized, "not_authenticated",
					"authentication is required for this resource")
			}
		})
	}
}

func classifyAuthError(err error) *Rejection {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return &Rejection{
			Status:  http.StatusUnauthorized,
			Code:    "token_expired",
			Message: "the token has expired",
		}
	case errors.Is(err, jwtx.ErrNotYetValid):
		return &Rejection{
			Status:  http.StatusUnauthorized,
			Code:    "token_not_yet_valid",
			Message: "the token is not valid yet",
		}
	default:
		// Signature failures, algorithm confusion, issuer mismatch and
		// garbled tokens all collapse into one response. Telling an
		// attacker which check failed helps nobody.
		return &Rejection{
			Status:  http.StatusUnauthorized,
			Code:    "invalid_token",
			Message: "the token could not be verified",
		}
	}
}
