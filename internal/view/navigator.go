package view

import (
	"encoding/json"
	"net/http"
)

// httpNavigator answers the current request with a redirect. HTMX requests
// get an HX-Redirect or HX-Location header instead of a 3xx so that HTMX
// performs the navigation itself.
type httpNavigator struct {
	w       http.ResponseWriter
	r       *http.Request
	written bool
}

// NewHTTPNavigator returns a Navigator that writes its navigation to w.
// Only the first Navigate call has any effect.
func NewHTTPNavigator(w http.ResponseWriter, r *http.Request) Navigator {
	return &httpNavigator{w: w, r: r}
}

func (n *httpNavigator) Navigate(path string, opts NavigateOptions) {
	if n.written {
		return
	}
	n.written = true

	if isHTMX(n.r) {
		if opts.Replace {
			loc, _ := json.Marshal(map[string]string{"path": path, "target": "main"})
			n.w.Header().Set("HX-Location", string(loc))
		} else {
			n.w.Header().Set("HX-Redirect", path)
		}
		n.w.WriteHeader(http.StatusOK)
		return
	}

	status := http.StatusSeeOther
	if opts.Replace {
		status = http.StatusFound
	}
	http.Redirect(n.w, n.r, path, status)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
