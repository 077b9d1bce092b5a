package session

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

const (
	cookieName     = "library-session"
	valueSessionID = "sid"
	valueAPICookie = "api"
	cookieMaxAge   = 7 * 24 * time.Hour
)

// Store binds the encrypted browser cookie to registry entries. The cookie
// carries the browser-session ID and the API session cookie; nothing else is
// kept across restarts.
type Store struct {
	cookies  *sessions.CookieStore
	registry *Registry
	logger   zerolog.Logger
}

func NewStore(registry *Registry, keys Keys, secure bool, logger zerolog.Logger) *Store {
	cs := sessions.NewCookieStore(keys.CookieHash, keys.CookieBlock)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{
		cookies:  cs,
		registry: registry,
		logger:   logger,
	}
}

// Load resolves the request's client instance. A cookie that cannot be
// decoded (rotated secret, tampering) starts a fresh session.
func (s *Store) Load(r *http.Request) (*Entry, error) {
	sess, err := s.cookies.Get(r, cookieName)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Ignoring undecodable session cookie")
	}

	id, _ := sess.Values[valueSessionID].(string)
	apiCookies, _ := sess.Values[valueAPICookie].(string)
	return s.registry.Lookup(id, apiCookies)
}

// Save writes the cookie when the entry's ID or API credentials differ from
// what the request carried. It must run before the response header is sent.
func (s *Store) Save(w http.ResponseWriter, r *http.Request, e *Entry) error {
	sess, _ := s.cookies.Get(r, cookieName)

	apiCookies := e.Client.Cookies()
	id, _ := sess.Values[valueSessionID].(string)
	current, _ := sess.Values[valueAPICookie].(string)
	if id == e.ID && current == apiCookies {
		return nil
	}

	sess.Values[valueSessionID] = e.ID
	sess.Values[valueAPICookie] = apiCookies
	return sess.Save(r, w)
}
