package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/archsystems/authgate/internal/authd/service"
	"github.com/archsystems/authgate/pkg/authsdk"
	"github.com/archsystems/authgate/pkg/httpx"
	"github.com/archsystems/authgate/pkg/slogx"
)

// ResetPasswordHandler serves POST /v1/auth/reset_password.
type ResetPasswordHandler struct {
	Accounts *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Request Password Reset
//	@Description	Emails a single-use reset token to the account behind the address. Responds 200 whether or not the address is known.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResetPasswordRequest	true	"Account email"
//	@Success		200		{object}	authsdk.StatusResponse			"status"
//	@Failure		400		{object}	authsdk.ErrorResponse			"code, message"
//	@Failure		500		{object}	authsdk.ErrorResponse			"code, message"
//	@Router			/v1/auth/reset_password [post].
func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}

	if err := h.Accounts.StartPasswordReset(ctx, req.Email); err != nil {
		log.Error("password reset failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error",
			"internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{Status: "ok"})
}

// ChangePasswordHandler serves POST /v1/auth/change_password. Two flows share
// the route: an authenticated caller changes their own password by proving
// the current one, and an anonymous caller completes a reset with the token
// from their email.
type ChangePasswordHandler struct {
	Accounts *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Change Password
//	@Description	Sets a new password, either with the caller's current password (authenticated) or with an emailed reset token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"New password plus proof"
//	@Success		200		{object}	authsdk.StatusResponse			"status"
//	@Failure		400		{object}	authsdk.ErrorResponse			"code, message"
//	@Failure		401		{object}	authsdk.ErrorResponse			"code, message"
//	@Failure		500		{object}	authsdk.ErrorResponse			"code, message"
//	@Router			/v1/auth/change_password [post].
func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "newPassword is required")
		return
	}

	var err error
	switch {
	case req.ResetToken != "":
		err = h.Accounts.CompletePasswordReset(ctx, req.Email, req.ResetToken, req.NewPassword)
	default:
		userID := httpx.UserIDFromContext(ctx)
		if userID == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "not_authenticated",
				"a reset token or an authenticated session is required")
			return
		}
		err = h.Accounts.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword)
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_reset_token",
				"the reset token is invalid or has expired")
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials",
				"current password is incorrect")
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteError(w, http.StatusBadRequest, "weak_password",
				"password does not meet the minimum length")
		default:
			log.Error("password change failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error",
				"internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{Status: "ok"})
}
