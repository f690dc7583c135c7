package handler

import (
	"net/http"
	"strconv"

	"github.com/joestump/journey-web/internal/auth"
	"github.com/joestump/journey-web/internal/view"
)

// Page is the template data for every page.
type Page struct {
	BasePage
	Params   view.Params
	OutfitID int
}

// PagesHandler renders the journey pages. Each method is a view.ViewFunc and
// must be mounted through view.Wrapper.
type PagesHandler struct {
	flashes *auth.Flashes
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(f *auth.Flashes) *PagesHandler {
	return &PagesHandler{flashes: f}
}

func (h *PagesHandler) page(r *http.Request, p view.Props) Page {
	return Page{
		BasePage: BasePage{Location: p.Location, Flashes: h.flashes.Pop(r.Context())},
		Params:   p.Params,
	}
}

// Landing serves GET /.
func (h *PagesHandler) Landing(w http.ResponseWriter, r *http.Request, p view.Props) {
	render(w, r, "landing.html", h.page(r, p))
}

// Journey serves GET /journey.
func (h *PagesHandler) Journey(w http.ResponseWriter, r *http.Request, p view.Props) {
	render(w, r, "journey.html", h.page(r, p))
}

// Outfit serves GET /journey/{outfitID}.
func (h *PagesHandler) Outfit(w http.ResponseWriter, r *http.Request, p view.Props) {
	id, err := strconv.Atoi(p.Params.Get("outfitID"))
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}
	data := h.page(r, p)
	data.OutfitID = id
	render(w, r, "outfit.html", data)
}

// Collection serves GET /collection.
func (h *PagesHandler) Collection(w http.ResponseWriter, r *http.Request, p view.Props) {
	render(w, r, "collection.html", h.page(r, p))
}
