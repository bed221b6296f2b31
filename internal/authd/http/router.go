package http

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/archsystems/authgate/internal/authd/service"
	"github.com/archsystems/authgate/internal/authd/store"
	"github.com/archsystems/authgate/pkg/httpx"
	"github.com/archsystems/authgate/pkg/jwtx"
	"github.com/archsystems/authgate/pkg/slogx"

	_ "github.com/archsystems/authgate/api/authd" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AccountService      *service.AccountService
	TokenService        *service.TokenService
	AllowRegistration   bool
	AllowedOrigin       string
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Global chain: request logging first so every later middleware can pull
	// the contextual logger, then CORS so even rate-limited responses carry
	// the headers browsers need.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	if r.AllowedOrigin != "" {
		r.middlewares = append(r.middlewares, httpx.CORSMiddleware(r.AllowedOrigin))
	}

	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Authgate Token Service API
//	@version		0.1.0
//	@description	JWT-based authentication service. Exchanges credentials for
//	@description	HS256-signed bearer tokens and validates them on protected routes.
//
//	@license.name	GPL-2.0
//	@license.url	https://www.gnu.org/licenses/old-licenses/gpl-2.0.html
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// byMethod dispatches on the request method, answering 405 with an Allow
// header for methods that have no handler. ServeMux method patterns need
// Go 1.22+; this keeps the same routing behavior on the 1.21 toolchain.
type byMethod map[string]http.Handler

func (m byMethod) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h, ok := m[req.Method]; ok {
		h.ServeHTTP(w, req)
		return
	}
	methods := make([]string, 0, len(m))
	for method := range m {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

func (r *Router) registerAuth() {
	loginHandler := &LoginHandler{
		Accounts: r.AccountService,
		Tokens:   r.TokenService,
	}

	// Token issuance takes credentials, so it gets the strict limit keyed on
	// IP plus username to slow down per-account brute force.
	r.Mux.Handle("/v1/auth/login", byMethod{
		http.MethodGet: httpx.Chain(loginHandler,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
		http.MethodPost: httpx.Chain(loginHandler,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	})

	registerHandler := &RegisterHandler{
		Accounts: r.AccountService,
		Enabled:  r.AllowRegistration,
	}
	r.Mux.Handle("/v1/auth/register", byMethod{
		http.MethodPost: httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	})

	resetHandler := &ResetPasswordHandler{Accounts: r.AccountService}
	r.Mux.Handle("/v1/auth/reset_password", byMethod{
		http.MethodPost: httpx.Chain(resetHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	})

	// No RequireAuth here: the reset-token flow is anonymous by nature. The
	// handler demands either a resolved caller or a valid reset token.
	changeHandler := &ChangePasswordHandler{Accounts: r.AccountService}
	r.Mux.Handle("/v1/auth/change_password", byMethod{
		http.MethodPost: httpx.Chain(changeHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	})

	meHandler := &MeHandler{Accounts: r.AccountService}
	r.Mux.Handle("/v1/auth/me", byMethod{
		http.MethodGet: httpx.Chain(meHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAuth(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	})
}

func (r *Router) registerSystem() {
	r.Mux.Handle("/livez", byMethod{
		http.MethodGet: httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	})
	r.Mux.Handle("/readyz", byMethod{
		http.MethodGet: httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	})
}
