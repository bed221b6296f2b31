package http

import (
	"net/http"

	"github.com/archsystems/authgate/internal/authd/service"
	"github.com/archsystems/authgate/pkg/authsdk"
	"github.com/archsystems/authgate/pkg/httpx"
	"github.com/archsystems/authgate/pkg/slogx"
)

// MeHandler serves GET /v1/auth/me. It doubles as the token validation
// endpoint: a 200 means the presented token is good.
type MeHandler struct {
	Accounts *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Current Account
//	@Description	Returns the account behind the presented token. A 200 response confirms the token verifies.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MeResponse		"userId, userLogin, userNicename, userEmail, roles, tokenExpires"
//	@Failure		401	{object}	authsdk.ErrorResponse	"code, message"
//	@Failure		500	{object}	authsdk.ErrorResponse	"code, message"
//	@Router			/v1/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token",
			"the token could not be verified")
		return
	}

	user, err := h.Accounts.GetUserByID(ctx, userID)
	if err != nil {
		// The token verified but the account is gone; treat as unauthorized
		// rather than leaking that the id used to exist.
		log.Warn("failed to load user for verified token", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token",
			"the token could not be verified")
		return
	}

	resp := authsdk.MeResponse{
		UserID:       user.ID,
		UserLogin:    user.Username,
		UserNicename: user.Nicename,
		UserEmail:    user.Email,
		Roles:        user.Roles,
	}
	if claims, ok := httpx.ClaimsFromContext(ctx); ok && claims.ExpiresAt != nil {
		resp.TokenExpires = claims.ExpiresAt.Unix()
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}
