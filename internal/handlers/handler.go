package handlers

import (
	"net/http"

	"library-web/internal/middleware"
	"library-web/internal/render"
	"library-web/internal/session"

	"github.com/rs/zerolog"
)

// pages is shared by every page handler: it knows how to find the caller's
// session and how to render a page for it.
type pages struct {
	renderer *render.Renderer
	logger   zerolog.Logger
}

func (p pages) entry(w http.ResponseWriter, r *http.Request) (*session.Entry, bool) {
	entry, ok := middleware.GetEntry(r)
	if !ok {
		p.logger.Error().Str("path", r.URL.Path).Msg("Request reached a page handler without a session")
		http.Error(w, "Session unavailable", http.StatusInternalServerError)
	}
	return entry, ok
}

func (p pages) render(w http.ResponseWriter, r *http.Request, entry *session.Entry, status int, name, title string, data any) {
	page := render.Page{
		Title: title,
		CSRF:  middleware.GetCSRFToken(r),
		Path:  r.URL.RequestURI(),
		Data:  data,
	}
	if entry != nil {
		page.User = entry.Cache.User()
	}
	p.renderer.HTML(w, status, name, page)
}

func (p pages) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		p.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Unreadable form")
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return false
	}
	return true
}

func seeOther(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// PageHandler serves the pages that do not belong to a view.
type PageHandler struct {
	pages
}

func NewPageHandler(renderer *render.Renderer, logger zerolog.Logger) *PageHandler {
	return &PageHandler{pages: pages{renderer: renderer, logger: logger}}
}

// Waiting is shown while the session check is still running.
func (h *PageHandler) Waiting(w http.ResponseWriter, r *http.Request) {
	entry, _ := middleware.GetEntry(r)
	h.render(w, r, entry, http.StatusOK, "waiting", "Loading", nil)
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	entry, _ := middleware.GetEntry(r)
	h.render(w, r, entry, http.StatusNotFound, "error", "Page not found", "The page you are looking for does not exist.")
}
