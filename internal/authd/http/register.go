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

// RegisterHandler serves POST /v1/auth/register. Disabled deployments answer
// every request with 403 before touching the body.
type RegisterHandler struct {
	Accounts *service.AccountService
	Enabled  bool
}

// ServeHTTP godoc
//
//	@Summary		Register Account
//	@Description	Creates a new account with the default role. Returns 403 when self-registration is disabled.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest		true	"New account"
//	@Success		201		{object}	authsdk.RegisterResponse	"userId, userLogin, userEmail"
//	@Failure		400		{object}	authsdk.ErrorResponse		"code, message"
//	@Failure		403		{object}	authsdk.ErrorResponse		"code, message"
//	@Failure		409		{object}	authsdk.ErrorResponse		"code, message"
//	@Failure		500		{object}	authsdk.ErrorResponse		"code, message"
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if !h.Enabled {
		httpx.WriteError(w, http.StatusForbidden, "registration_disabled",
			"self-registration is disabled on this deployment")
		return
	}

	var req authsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.Accounts.Register(ctx, req.Username, req.Email, req.Password, req.Nicename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			httpx.WriteError(w, http.StatusConflict, "username_taken", "username is already in use")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict, "email_taken", "email is already in use")
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteError(w, http.StatusBadRequest, "weak_password",
				"password does not meet the minimum length")
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request",
				"username and email are required")
		default:
			log.Error("registration failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error",
				"internal server error")
		}
		return
	}

	log.Info("account registered", "user_id", user.ID)

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		UserID:    user.ID,
		UserLogin: user.Username,
		UserEmail: user.Email,
	})
}
