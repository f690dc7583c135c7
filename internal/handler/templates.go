package handler

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/joestump/journey-web/internal/auth"
	"github.com/joestump/journey-web/internal/view"
	"github.com/joestump/journey-web/web"
)

// BasePage carries layout-level data available to every template.
type BasePage struct {
	Location view.Location
	Flashes  []auth.Flash
}

// pageCache maps a page file name (e.g. "journey.html") to a compiled set
// containing base.html + partials + that page. Each page gets its own set so
// {{define "content"}} blocks don't collide.
var pageCache map[string]*template.Template

func init() {
	partials, err := fs.Glob(web.TemplateFS, "templates/partials/*.html")
	if err != nil {
		panic("glob partials: " + err.Error())
	}
	pages, err := fs.Glob(web.TemplateFS, "templates/pages/*.html")
	if err != nil {
		panic("glob pages: " + err.Error())
	}

	pageCache = make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		files := make([]string, 0, 2+len(partials))
		files = append(files, "templates/base.html")
		files = append(files, partials...)
		files = append(files, p)

		t, err := template.New("").ParseFS(web.TemplateFS, files...)
		if err != nil {
			panic(fmt.Sprintf("parse %s: %v", p, err))
		}
		name, _ := strings.CutPrefix(p, "templates/pages/")
		pageCache[name] = t
	}
}

// isHTMX returns true when the request was sent by HTMX.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// render executes a full page, or only its "content" block plus toasts for
// HTMX requests.
func render(w http.ResponseWriter, r *http.Request, page string, data any) {
	t, ok := pageCache[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if isHTMX(r) {
		if err := t.ExecuteTemplate(w, "toasts", data); err != nil {
			http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := t.ExecuteTemplate(w, "content", data); err != nil {
			http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
	}
}
