package view

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// VisitorCookie carries the id that ties requests to a Guard.
const VisitorCookie = "view_id"

// WrapperDeps holds the collaborators of a Wrapper.
type WrapperDeps struct {
	Registry *Registry
	// Session builds the session provider for a request.
	Session func(r *http.Request) SessionProvider
	// Notifier builds the notifier for a request.
	Notifier func(r *http.Request) Notifier
	// SecureCookies marks the visitor cookie Secure.
	SecureCookies bool
	// PrivateCookies names cookies of this server that are kept off the
	// guard's snapshot and so never reach the health backend. The visitor
	// cookie is always private.
	PrivateCookies []string
}

// Wrapper decorates views with routing props and the landing guard.
type Wrapper struct {
	deps WrapperDeps
}

// NewWrapper creates a Wrapper. All dependencies are required.
func NewWrapper(deps WrapperDeps) *Wrapper {
	if deps.Registry == nil || deps.Session == nil || deps.Notifier == nil {
		panic("view: NewWrapper requires Registry, Session and Notifier")
	}
	return &Wrapper{deps: deps}
}

// Wrap returns a handler that runs the visitor's guard and then renders v
// with the current location, path parameters and a navigator. The view is
// not rendered when the guard redirects.
func (wr *Wrapper) Wrap(v View) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		guard := wr.guardFor(w, r)

		loc := Location{Path: r.URL.Path, RawQuery: r.URL.RawQuery}
		nav := NewHTTPNavigator(w, r)
		snap := Snapshot{
			Location: loc,
			Session:  wr.deps.Session(r),
			Cookies:  wr.forwardedCookies(r),
		}
		if guard.Render(snap, nav, wr.deps.Notifier(r)) {
			return
		}

		v.ServeView(w, r, Props{
			Location: loc,
			Params:   paramsFromRequest(r),
			Navigate: nav,
		})
	})
}

// WrapFunc is Wrap for a plain function.
func (wr *Wrapper) WrapFunc(f func(w http.ResponseWriter, r *http.Request, p Props)) http.Handler {
	return wr.Wrap(ViewFunc(f))
}

// guardFor picks the guard for r. A full page load mounts a fresh guard and
// HTMX navigation keeps the one mounted by the page it swaps into. A request
// without a usable visitor cookie gets a guard that is not kept, since the
// browser may never send the issued id back.
func (wr *Wrapper) guardFor(w http.ResponseWriter, r *http.Request) *Guard {
	id, known := wr.visitorID(w, r)
	switch {
	case !known:
		return wr.deps.Registry.Ephemeral()
	case isHTMX(r):
		return wr.deps.Registry.Acquire(id)
	default:
		return wr.deps.Registry.Remount(id)
	}
}

// forwardedCookies returns the request cookies minus the private ones.
func (wr *Wrapper) forwardedCookies(r *http.Request) []*http.Cookie {
	all := r.Cookies()
	out := make([]*http.Cookie, 0, len(all))
	for _, c := range all {
		if c.Name == VisitorCookie || slices.Contains(wr.deps.PrivateCookies, c.Name) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// visitorID returns the visitor id from the request and whether the request
// carried it. A new id is issued when the cookie is absent or malformed.
func (wr *Wrapper) visitorID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if c, err := r.Cookie(VisitorCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String(), true
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   wr.deps.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return id, false
}

func paramsFromRequest(r *http.Request) Params {
	params := Params{}
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return params
	}
	for i, key := range rctx.URLParams.Keys {
		if key == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}
