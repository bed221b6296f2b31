package httpx

import (
	"context"

	"github.com/archsystems/authgate/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID  ctxKey = "user_id"
	CtxKeyClaims  ctxKey = "claims"
	CtxKeyOutcome ctxKey = "auth_outcome"
)

// authGuardKey marks a context while one validation call is in flight.
// See Authenticate for why this exists.
type authGuardKey struct{}

// UserIDFromContext returns the authenticated caller's user id, or "" when
// the request is anonymous.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// ClaimsFromContext returns the verified token claims for the request.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}

// OutcomeFromContext returns the authentication outcome recorded for this
// request. The zero outcome means the decision engine never ran.
func OutcomeFromContext(ctx context.Context) AuthOutcome {
	if o, ok := ctx.Value(CtxKeyOutcome).(AuthOutcome); ok {
		return o
	}
	return AuthOutcome{}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Data.UserID)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

func contextWithOutcome(ctx context.Context, o AuthOutcome) context.Context {
	return context.WithValue(ctx, CtxKeyOutcome, o)
}

func authenticating(ctx context.Context) bool {
	v, _ := ctx.Value(authGuardKey{}).(bool)
	return v
}
