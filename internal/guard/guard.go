// Package guard decides whether a page may be shown to the current session.
package guard

import (
	"net/url"
	"slices"
	"strings"

	"library-web/internal/models"
)

// Fallback is where signed-in users without the required role are sent.
const Fallback = "/catalog"

type State struct {
	Loading bool
	User    *models.User
}

type Outcome int

const (
	Wait Outcome = iota
	RedirectLogin
	RedirectFallback
	Allow
)

func (o Outcome) String() string {
	switch o {
	case Wait:
		return "wait"
	case RedirectLogin:
		return "redirect_login"
	case RedirectFallback:
		return "redirect_fallback"
	case Allow:
		return "allow"
	}
	return "unknown"
}

// Decision carries the outcome and, for RedirectLogin, the page to return to.
type Decision struct {
	Outcome Outcome
	Next    string
}

// Decide is pure. An empty roles list admits any signed-in user.
func Decide(st State, roles []models.UserRole, path string) Decision {
	switch {
	case st.Loading:
		return Decision{Outcome: Wait}
	case st.User == nil:
		return Decision{Outcome: RedirectLogin, Next: path}
	case len(roles) > 0 && !slices.Contains(roles, st.User.Role):
		return Decision{Outcome: RedirectFallback}
	}
	return Decision{Outcome: Allow}
}

// LoginURL builds the login location that returns to next afterwards.
func LoginURL(next string) string {
	if !IsLocalPath(next) {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// SafeNext returns next when it points inside this site and Fallback otherwise.
func SafeNext(next string) string {
	if IsLocalPath(next) {
		return next
	}
	return Fallback
}

func IsLocalPath(p string) bool {
	if p == "" || !strings.HasPrefix(p, "/") {
		return false
	}
	if strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	u, err := url.Parse(p)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
