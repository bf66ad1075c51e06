package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/nordsearch/pagefinder/internal/search/service"
	"github.com/nordsearch/pagefinder/internal/search/session"
	"github.com/nordsearch/pagefinder/internal/search/store"
	"github.com/nordsearch/pagefinder/pkg/httpx"
	"github.com/nordsearch/pagefinder/pkg/metricsx"
	"github.com/nordsearch/pagefinder/pkg/slogx"

	_ "github.com/nordsearch/pagefinder/api/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	sessions     *session.Manager
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	SearchService  *service.SearchService
	AccountService *service.AccountService
	WeatherService *service.WeatherService
}

func NewRouter(
	sessions *session.Manager,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		sessions:     sessions,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metricsx.HTTPMiddleware,
		SessionMiddleware(r.sessions, r.store),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSearch()
	r.registerAccounts()
	r.registerWeather()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			PageFinder API
//	@version		0.1.0
//	@description	Minimal multilingual page search with user accounts. Search matches
//	@description	literal substrings in page content scoped to one language; accounts use
//	@description	form-based registration and login with a session cookie.
//
//	@contact.name	NordSearch Team
//	@contact.url	https://github.com/nordsearch/pagefinder
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSearch() {
	h := &SearchHandler{SearchService: r.SearchService}

	// Search is the public surface; high limit so normal browsing never trips it.
	searchChain := httpx.Chain(h,
		httpx.RateLimitByIP(httpx.PublicLimit),
	)

	r.Mux.Handle("GET /{$}", searchChain)
	r.Mux.Handle("GET /api/search", searchChain)
}

func (r *Router) registerAccounts() {
	login := &LoginHandler{AccountService: r.AccountService, Sessions: r.sessions}
	logout := &LogoutHandler{}
	register := &RegisterHandler{AccountService: r.AccountService}

	// POST /api/login - strict rate limit by IP + username form field to
	// slow credential stuffing against a single account.
	r.Mux.Handle("POST /api/login",
		httpx.Chain(login,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)

	// GET /api/logout - idempotent, lenient limit.
	r.Mux.Handle("GET /api/logout",
		httpx.Chain(logout,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /api/register - strict rate limit by IP (public signup endpoint).
	r.Mux.Handle("POST /api/register",
		httpx.Chain(register,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerWeather() {
	h := &WeatherHandler{WeatherService: r.WeatherService}

	// The service caches upstream responses, so a moderate limit is plenty.
	r.Mux.Handle("GET /api/weather",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /metrics", metricsx.Handler())
}
