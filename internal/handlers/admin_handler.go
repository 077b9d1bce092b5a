package handlers

import (
	"net/http"

	"library-web/internal/models"
	"library-web/internal/render"
	"library-web/internal/session"
	"library-web/internal/views"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type AdminHandler struct {
	pages
}

func NewAdminHandler(renderer *render.Renderer, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{pages: pages{renderer: renderer, logger: logger}}
}

func (h *AdminHandler) booksView(entry *session.Entry) *views.AdminBooksView {
	return entry.Activate("admin_books", func() session.View {
		return views.NewAdminBooksView(entry.API.Books, h.logger)
	}).(*views.AdminBooksView)
}

func (h *AdminHandler) rentalsView(entry *session.Entry) *views.RosterView[models.Order] {
	return entry.Activate("admin_orders", func() session.View {
		return views.NewActiveRentalsView(entry.API.Admin, h.logger)
	}).(*views.RosterView[models.Order])
}

func (h *AdminHandler) remindersView(entry *session.Entry) *views.RosterView[models.Reminder] {
	return entry.Activate("admin_reminders", func() session.View {
		return views.NewRemindersView(entry.API.Admin, h.logger)
	}).(*views.RosterView[models.Reminder])
}

func (h *AdminHandler) Books(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	view := h.booksView(entry)
	view.Open(r.Context())
	h.render(w, r, entry, http.StatusOK, "admin_books", "Catalog management", view.Snapshot())
}

func (h *AdminHandler) NewBook(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	view := h.booksView(entry)
	view.StartCreate()
	seeOther(w, r, "/admin/books")
}

func (h *AdminHandler) EditBook(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	view := h.booksView(entry)
	view.Open(r.Context())

	book, found := view.Find(mux.Vars(r)["id"])
	if !found {
		h.render(w, r, entry, http.StatusNotFound, "error", "Book not found", "This book is not in the catalog.")
		return
	}
	view.StartEdit(book)
	seeOther(w, r, "/admin/books")
}

func (h *AdminHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, "")
}

func (h *AdminHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, mux.Vars(r)["id"])
}

func (h *AdminHandler) submit(w http.ResponseWriter, r *http.Request, id string) {
	entry, ok := h.entry(w, r)
	if !ok || !h.parseForm(w, r) {
		return
	}
	form := views.BookForm{
		Title:           r.PostForm.Get("title"),
		Author:          r.PostForm.Get("author"),
		Category:        r.PostForm.Get("category"),
		Year:            r.PostForm.Get("year"),
		Description:     r.PostForm.Get("description"),
		CoverURL:        r.PostForm.Get("coverUrl"),
		PurchasePrice:   r.PostForm.Get("purchasePrice"),
		RentTwoWeeks:    r.PostForm.Get("rentTwoWeeks"),
		RentOneMonth:    r.PostForm.Get("rentOneMonth"),
		RentThreeMonths: r.PostForm.Get("rentThreeMonths"),
	}
	if h.booksView(entry).Submit(r.Context(), id, form) {
		h.logger.Info().Str("session_id", entry.ID).Str("book_id", id).Msg("Book saved")
	}
	seeOther(w, r, "/admin/books")
}

func (h *AdminHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok || !h.parseForm(w, r) {
		return
	}
	id := mux.Vars(r)["id"]
	status := models.BookStatus(r.PostForm.Get("status"))
	if h.booksView(entry).ChangeStatus(r.Context(), id, status) {
		h.logger.Info().Str("session_id", entry.ID).Str("book_id", id).Str("status", string(status)).Msg("Book status changed")
	}
	seeOther(w, r, "/admin/books")
}

func (h *AdminHandler) ActiveRentals(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	view := h.rentalsView(entry)
	view.Open(r.Context())
	h.render(w, r, entry, http.StatusOK, "admin_orders", "Active rentals", view.Snapshot())
}

func (h *AdminHandler) RefreshRentals(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	h.rentalsView(entry).Refresh(r.Context())
	seeOther(w, r, "/admin/orders")
}

func (h *AdminHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	view := h.remindersView(entry)
	view.Open(r.Context())
	h.render(w, r, entry, http.StatusOK, "admin_reminders", "Reminders", view.Snapshot())
}

func (h *AdminHandler) RefreshReminders(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	h.remindersView(entry).Refresh(r.Context())
	seeOther(w, r, "/admin/reminders")
}
