package handlers

import (
	"net/http"
	"net/url"

	"library-web/internal/models"
	"library-web/internal/render"
	"library-web/internal/session"
	"library-web/internal/views"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type CatalogHandler struct {
	pages
}

func NewCatalogHandler(renderer *render.Renderer, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{pages: pages{renderer: renderer, logger: logger}}
}

func (h *CatalogHandler) view(entry *session.Entry) *views.CatalogView {
	return entry.Activate("catalog", func() session.View {
		return views.NewCatalogView(entry.API.Books, entry.API.Orders, h.logger)
	}).(*views.CatalogView)
}

func (h *CatalogHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	view := h.view(entry)
	view.Show(r.Context(), views.Filters{
		Category: q.Get("category"),
		Author:   q.Get("author"),
		Year:     q.Get("year"),
		Sort:     q.Get("sort"),
	})
	h.render(w, r, entry, http.StatusOK, "catalog", "Catalog", view.Snapshot())
}

func (h *CatalogHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	view := h.view(entry)
	view.LoadMore(r.Context())
	seeOther(w, r, catalogURL(view.Snapshot().Filters))
}

func (h *CatalogHandler) Select(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	view := h.view(entry)
	view.Select(r.Context(), mux.Vars(r)["id"])
	seeOther(w, r, catalogURL(view.Snapshot().Filters))
}

// Order forwards the order to the API even when the page showed the action
// as unavailable; the API's answer becomes the page message.
func (h *CatalogHandler) Order(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok || !h.parseForm(w, r) {
		return
	}
	view := h.view(entry)
	bookID := r.PostForm.Get("bookId")
	orderType := models.OrderType(r.PostForm.Get("type"))

	msg := view.PlaceOrder(r.Context(), bookID, orderType)
	h.logger.Debug().
		Str("session_id", entry.ID).
		Str("book_id", bookID).
		Str("type", string(orderType)).
		Str("result", msg).
		Msg("Order submitted")
	seeOther(w, r, catalogURL(view.Snapshot().Filters))
}

func catalogURL(f views.Filters) string {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Author != "" {
		q.Set("author", f.Author)
	}
	if f.Year != "" {
		q.Set("year", f.Year)
	}
	if f.Sort != "" && f.Sort != views.DefaultFilters().Sort {
		q.Set("sort", f.Sort)
	}
	if len(q) == 0 {
		return "/catalog"
	}
	return "/catalog?" + q.Encode()
}
