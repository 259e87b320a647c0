package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/diyageorge33/minipro/internal/auth/service"
	"github.com/diyageorge33/minipro/internal/auth/store"
	"github.com/diyageorge33/minipro/pkg/httpx"
	"github.com/diyageorge33/minipro/pkg/slogx"

	_ "github.com/diyageorge33/minipro/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	validate     *requestValidator

	AccountService *service.AccountService
	SessionService *service.SessionService
	UserService    *service.UserService

	Cookie CookieConfig
	CORS   httpx.CORSConfig

	// ClientURL is the browser client's base URL; logged-out browsers are sent
	// to its /login page.
	ClientURL string

	// Mailer is reported by /readyz ("smtp" or "log").
	Mailer string
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		validate:     newRequestValidator(),
		Cookie:       CookieConfig{Name: "minipro_session"},
		ClientURL:    "http://localhost:5173",
	}
}

// ApplyRoutes registers every endpoint and builds the global middleware
// chain. Services must be set before calling it.
func (r *Router) ApplyRoutes() {
	r.middlewares = []httpx.Middleware{
		httpx.CORS(r.CORS),
		slogx.HTTPMiddleware(r.logger),
		httpx.SessionMiddleware(httpx.SessionResolverFunc(r.resolveSession), r.Cookie.Name),
	}

	r.registerAccount()
	r.registerSession()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						MiniPro Authentication Service API
//	@version					0.1.0
//	@description				Email and password authentication with one-time code email verification and cookie sessions.
//	@description
//	@description				Accounts must confirm their address with the 6-digit code mailed at signup before they can log in.
//
//	@contact.name				MiniPro Team
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:3000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						minipro_session
//	@description				Opaque session token set by the login endpoint.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) loginURL() string {
	return strings.TrimSuffix(r.ClientURL, "/") + "/login"
}

func (r *Router) resolveSession(ctx context.Context, token string) (string, string, error) {
	sess, err := r.SessionService.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return "", "", httpx.ErrNoSession
		}
		return "", "", err
	}
	return sess.ID, sess.UserID, nil
}

func (r *Router) registerAccount() {
	h := &AccountHandler{
		AccountService: r.AccountService,
		validate:       r.validate,
	}

	// POST /signup - strict rate limit by IP (account creation sends mail)
	r.Mux.Handle("POST /api/auth/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Code guessing is limited per IP + email so one address cannot be
	// brute forced from many requests of a single client.
	r.Mux.Handle("POST /api/auth/verify-email",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyEmail),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("POST /api/auth/resend-verification",
		httpx.Chain(http.HandlerFunc(h.HandleResendVerification),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
}

func (r *Router) registerSession() {
	h := &SessionHandler{
		AccountService: r.AccountService,
		SessionService: r.SessionService,
		UserService:    r.UserService,
		Cookie:         r.Cookie,
		LoginURL:       r.loginURL(),
		validate:       r.validate,
	}

	// POST /login - strict rate limit by IP + email field (password guessing)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.RequireSession,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// Logout never requires a session; it is idempotent.
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogoutRedirect),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	dashboard := &DashboardHandler{
		UserService: r.UserService,
		LoginURL:    r.loginURL(),
	}
	r.Mux.Handle("GET /secrets",
		httpx.Chain(dashboard,
			httpx.RequireSessionRedirect(r.loginURL()),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Mailer),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
