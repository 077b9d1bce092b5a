package middleware

import (
	"context"
	"net/http"
	"net/url"

	"library-web/internal/guard"
	"library-web/internal/models"
	"library-web/internal/session"

	"github.com/rs/zerolog"
)

const (
	csrfFormField = "_csrf"
	csrfHeader    = "X-CSRF-Token"
)

// Session binds the browser session to its client instance and runs the
// first identity check. The session cookie is written just before the
// response header goes out.
func Session(store *session.Store, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry, err := store.Load(r)
			if err != nil {
				logger.Error().Err(err).Str("request_id", GetRequestID(r)).Msg("Failed to load session")
				respondWithError(w, http.StatusInternalServerError, "session_unavailable", "Session could not be loaded")
				return
			}

			entry.Cache.Init(context.WithoutCancel(r.Context()))

			sw := &sessionWriter{ResponseWriter: w, save: func() {
				if err := store.Save(w, r, entry); err != nil {
					logger.Error().Err(err).Str("session_id", entry.ID).Msg("Failed to save session cookie")
				}
			}}

			ctx := context.WithValue(r.Context(), EntryKey, entry)
			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.flushSession()
		})
	}
}

type sessionWriter struct {
	http.ResponseWriter
	save  func()
	saved bool
}

func (sw *sessionWriter) flushSession() {
	if !sw.saved {
		sw.saved = true
		sw.save()
	}
}

func (sw *sessionWriter) WriteHeader(code int) {
	sw.flushSession()
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *sessionWriter) Write(b []byte) (int, error) {
	sw.flushSession()
	return sw.ResponseWriter.Write(b)
}

func (sw *sessionWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

func GetEntry(r *http.Request) (*session.Entry, bool) {
	entry, ok := r.Context().Value(EntryKey).(*session.Entry)
	return entry, ok
}

// TokenService issues and checks form tokens bound to a browser session.
type TokenService interface {
	GenerateToken(sessionID string) (string, error)
	ValidateToken(token, sessionID string) error
}

// CSRF rejects state-changing requests without a valid form token and makes
// a fresh token available to handlers for rendering. Must run after Session.
func CSRF(tokens TokenService, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry, ok := GetEntry(r)
			if !ok {
				respondWithError(w, http.StatusInternalServerError, "session_missing", "Session is not available")
				return
			}

			if !isSafeMethod(r.Method) {
				token := r.Header.Get(csrfHeader)
				if token == "" {
					token = r.PostFormValue(csrfFormField)
				}
				if err := tokens.ValidateToken(token, entry.ID); err != nil {
					logger.Warn().Err(err).
						Str("request_id", GetRequestID(r)).
						Str("path", r.URL.Path).
						Msg("Rejected form token")
					respondWithError(w, http.StatusForbidden, "invalid_form_token", "The form has expired. Reload the page and try again.")
					return
				}
			}

			token, err := tokens.GenerateToken(entry.ID)
			if err != nil {
				logger.Error().Err(err).Msg("Failed to issue form token")
				respondWithError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), CSRFKey, token)))
		})
	}
}

func GetCSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(CSRFKey).(string)
	return token
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// RequireAuth applies the route guard. An empty role list admits any
// signed-in user. While the session check is still running the waiting page
// is served and the browser retries after a second.
func RequireAuth(waiting http.Handler, roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry, ok := GetEntry(r)
			if !ok {
				http.Redirect(w, r, guard.LoginURL(""), http.StatusSeeOther)
				return
			}

			st := entry.Cache.State()
			back := returnPath(r)
			d := guard.Decide(guard.State{Loading: st.Loading, User: st.User}, roles, back)
			switch d.Outcome {
			case guard.Wait:
				refresh := "1"
				if !isSafeMethod(r.Method) {
					refresh = "1; url=" + guard.SafeNext(back)
				}
				w.Header().Set("Refresh", refresh)
				w.Header().Set("Cache-Control", "no-store")
				waiting.ServeHTTP(w, r)
			case guard.RedirectLogin:
				http.Redirect(w, r, guard.LoginURL(d.Next), http.StatusSeeOther)
			case guard.RedirectFallback:
				http.Redirect(w, r, guard.Fallback, http.StatusSeeOther)
			case guard.Allow:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// returnPath is where login should send the user back to. Form posts return
// to the page that held the form.
func returnPath(r *http.Request) string {
	if isSafeMethod(r.Method) {
		return r.URL.RequestURI()
	}
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host {
		return ""
	}
	return ref.RequestURI()
}
