package handler

import (
	"io/fs"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/heptiolabs/healthcheck"
	"github.com/joestump/journey-web/internal/auth"
	"github.com/joestump/journey-web/internal/view"
	"github.com/joestump/journey-web/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	Flashes        *auth.Flashes
	Registry       *view.Registry
	Probes         healthcheck.Handler
	// Metrics serves /metrics; nil uses the default Prometheus registry.
	Metrics         http.Handler
	InsecureCookies bool
}

// NewRouter assembles the chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	// Operational endpoints carry no session.
	r.Get("/healthz", deps.Probes.LiveEndpoint)
	r.Get("/readyz", deps.Probes.ReadyEndpoint)
	metricsHandler := deps.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	// Static assets (embedded). fs.Sub so the file server sees css/app.css
	// directly, not static/css/... paths.
	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServerFS(staticSub)))

	// Pages run behind the landing guard. The server's own cookies are
	// neither part of the login fingerprint nor forwarded to the backend.
	private := []string{view.VisitorCookie, deps.SessionManager.Cookie.Name}
	wrapper := view.NewWrapper(view.WrapperDeps{
		Registry: deps.Registry,
		Session: func(r *http.Request) view.SessionProvider {
			return auth.NewCookieSession(r, private...)
		},
		Notifier: func(r *http.Request) view.Notifier {
			return deps.Flashes.Notifier(r.Context())
		},
		SecureCookies:  !deps.InsecureCookies,
		PrivateCookies: private,
	})
	pages := NewPagesHandler(deps.Flashes)

	r.Group(func(r chi.Router) {
		r.Use(deps.SessionManager.LoadAndSave)

		r.Method(http.MethodGet, "/", wrapper.WrapFunc(pages.Landing))
		r.Method(http.MethodGet, "/journey", wrapper.WrapFunc(pages.Journey))
		r.Method(http.MethodGet, "/journey/{outfitID}", wrapper.WrapFunc(pages.Outfit))
		r.Method(http.MethodGet, "/collection", wrapper.WrapFunc(pages.Collection))
	})

	return r
}
