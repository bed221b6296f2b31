package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/archsystems/authgate/internal/authd/service"
	"github.com/archsystems/authgate/pkg/authsdk"
	"github.com/archsystems/authgate/pkg/httpx"
	"github.com/archsystems/authgate/pkg/slogx"
)

// LoginHandler serves GET|POST /v1/auth/login.
//
// Credentials arrive as a JSON body, a form body or query parameters. All
// three are accepted because browser clients post JSON while older plugins
// send form-encoded requests and the GET variant uses the query string.
type LoginHandler struct {
	Accounts *service.AccountService
	Tokens   *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Issue Token
//	@Description	Exchanges a username and password for a signed JWT.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse	"jwt, userId, userLogin, userNicename, userEmail, roles"
//	@Failure		400		{object}	authsdk.ErrorResponse	"code, message"
//	@Failure		401		{object}	authsdk.ErrorResponse	"code, message"
//	@Failure		500		{object}	authsdk.ErrorResponse	"code, message"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	username, password, ok := readCredentials(r)
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request",
			"username and password are required")
		return
	}

	user, err := h.Accounts.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials",
				"invalid username or password")
			return
		}
		log.Error("login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error",
			"internal server error")
		return
	}

	issued, err := h.Tokens.Issue(ctx, user)
	if err != nil {
		log.Error("token issuance failed", "user_id", user.ID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error",
			"internal server error")
		return
	}

	log.Info("token issued", "user_id", user.ID)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		JWT:          issued.Token,
		UserID:       user.ID,
		UserLogin:    user.Username,
		UserNicename: user.Nicename,
		UserEmail:    user.Email,
		Roles:        user.Roles,
	})
}

func readCredentials(r *http.Request) (username, password string, ok bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req authsdk.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", "", false
		}
		username, password = req.Username, req.Password
	} else {
		if err := r.ParseForm(); err != nil {
			return "", "", false
		}
		username = r.Form.Get("username")
		password = r.Form.Get("password")
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", "", false
	}
	return username, password, true
}
