package handlers

import (
	"net/http"

	"library-web/internal/guard"
	"library-web/internal/render"
	"library-web/internal/session"
	"library-web/internal/views"

	"github.com/rs/zerolog"
)

type AuthHandler struct {
	pages
}

func NewAuthHandler(renderer *render.Renderer, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{pages: pages{renderer: renderer, logger: logger}}
}

type loginPage struct {
	views.LoginSnapshot
	Next string
}

func (h *AuthHandler) loginView(entry *session.Entry) *views.LoginView {
	return entry.Activate("login", func() session.View {
		return views.NewLoginView(entry.Cache, h.logger)
	}).(*views.LoginView)
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	next := r.URL.Query().Get("next")
	if entry.Cache.User() != nil {
		seeOther(w, r, guard.SafeNext(next))
		return
	}

	view := h.loginView(entry)
	view.SetMode(views.Mode(r.URL.Query().Get("mode")))
	h.renderLogin(w, r, entry, view, next)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok || !h.parseForm(w, r) {
		return
	}
	next := r.PostForm.Get("next")

	view := h.loginView(entry)
	user, ok := view.Login(r.Context(), r.PostForm.Get("identifier"), r.PostForm.Get("password"))
	if !ok {
		h.renderLogin(w, r, entry, view, next)
		return
	}
	h.logger.Info().Str("session_id", entry.ID).Str("username", user.Username).Msg("User signed in")
	entry.CloseView()
	seeOther(w, r, guard.SafeNext(next))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok || !h.parseForm(w, r) {
		return
	}
	next := r.PostForm.Get("next")

	view := h.loginView(entry)
	user, ok := view.Register(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("email"), r.PostForm.Get("password"))
	if !ok {
		h.renderLogin(w, r, entry, view, next)
		return
	}
	h.logger.Info().Str("session_id", entry.ID).Str("username", user.Username).Msg("User registered")
	entry.CloseView()
	seeOther(w, r, guard.SafeNext(next))
}

// Logout always ends the local session, even when the API call fails.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	entry.Cache.Logout(r.Context())
	entry.CloseView()
	seeOther(w, r, "/login")
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, entry *session.Entry, view *views.LoginView, next string) {
	if !guard.IsLocalPath(next) {
		next = ""
	}
	snap := view.Snapshot()
	title := "Sign in"
	if snap.Mode == views.ModeRegister {
		title = "Register"
	}
	h.render(w, r, entry, http.StatusOK, "login", title, loginPage{LoginSnapshot: snap, Next: next})
}
