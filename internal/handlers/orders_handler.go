package handlers

import (
	"net/http"

	"library-web/internal/models"
	"library-web/internal/render"
	"library-web/internal/session"
	"library-web/internal/views"

	"github.com/rs/zerolog"
)

type OrdersHandler struct {
	pages
}

func NewOrdersHandler(renderer *render.Renderer, logger zerolog.Logger) *OrdersHandler {
	return &OrdersHandler{pages: pages{renderer: renderer, logger: logger}}
}

// Mine fetches the list on every visit.
func (h *OrdersHandler) Mine(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	view := entry.Activate("orders", func() session.View {
		return views.NewMyOrdersView(entry.API.Orders, h.logger)
	}).(*views.RosterView[models.Order])
	view.Refresh(r.Context())
	h.render(w, r, entry, http.StatusOK, "orders", "My orders", view.Snapshot())
}
