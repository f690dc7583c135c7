// Package view wraps page handlers with routing state and the landing-page
// guard. A wrapped view receives the current location, path parameters and a
// navigation handle as explicit arguments.
package view

import (
	"context"
	"net/http"
	"time"
)

// Location is the current path and query of a request.
type Location struct {
	Path     string
	RawQuery string
}

// String returns the path with its query, if any.
func (l Location) String() string {
	if l.RawQuery == "" {
		return l.Path
	}
	return l.Path + "?" + l.RawQuery
}

// Params maps route-parameter names to their values.
type Params map[string]string

// Get returns the named parameter or "" when absent.
func (p Params) Get(name string) string {
	return p[name]
}

// NavigateOptions controls how a navigation is performed.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing one.
	Replace bool
}

// Navigator requests a path change.
type Navigator interface {
	Navigate(path string, opts NavigateOptions)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string, opts NavigateOptions)

func (f NavigatorFunc) Navigate(path string, opts NavigateOptions) { f(path, opts) }

// Notification is a transient message shown to the visitor.
type Notification struct {
	Level       string // "warning", "info", "success", "error"
	Message     string
	Description string
	Duration    time.Duration
}

// Notifier surfaces notifications to the visitor.
type Notifier interface {
	Warning(n Notification)
}

// SessionProvider reports whether the visitor carries a login indicator.
type SessionProvider interface {
	IsAuthenticated() bool
	// Revision changes whenever the underlying cookie set changes.
	Revision() string
}

// HealthChecker pings the backend health endpoint on behalf of a visitor.
// The cookies are forwarded so the request carries the visitor's credentials.
type HealthChecker interface {
	Check(ctx context.Context, cookies []*http.Cookie) error
}

// Props is what a wrapped view receives besides the request itself.
type Props struct {
	Location Location
	Params   Params
	Navigate Navigator
}

// View renders a page given its routing props.
type View interface {
	ServeView(w http.ResponseWriter, r *http.Request, p Props)
}

// ViewFunc adapts a function to View.
type ViewFunc func(w http.ResponseWriter, r *http.Request, p Props)

func (f ViewFunc) ServeView(w http.ResponseWriter, r *http.Request, p Props) { f(w, r, p) }
