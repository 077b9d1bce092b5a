package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, r *Registry) *Store {
	t.Helper()
	keys, err := DeriveKeys("test-secret")
	require.NoError(t, err)
	return NewStore(r, keys, false, zerolog.Nop())
}

func TestDeriveKeys(t *testing.T) {
	keys, err := DeriveKeys("s3cret")
	require.NoError(t, err)
	assert.Len(t, keys.CookieHash, 64)
	assert.Len(t, keys.CookieBlock, 32)
	assert.Len(t, keys.FormToken, 32)
	assert.NotEqual(t, keys.CookieBlock, keys.FormToken)

	again, err := DeriveKeys("s3cret")
	require.NoError(t, err)
	assert.Equal(t, keys, again)

	_, err = DeriveKeys("")
	assert.Error(t, err)
}

func TestStore_RoundTrip(t *testing.T) {
	r := newTestRegistry(t, "http://api.test")
	s := newTestStore(t, r)

	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	e, err := s.Load(req)
	require.NoError(t, err)
	require.NoError(t, e.Client.RestoreCookies("SESSION=abc"))

	rec := httptest.NewRecorder()
	require.NoError(t, s.Save(rec, req, e))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	next := httptest.NewRequest(http.MethodGet, "/orders", nil)
	next.AddCookie(cookies[0])
	again, err := s.Load(next)
	require.NoError(t, err)
	assert.Same(t, e, again)

	rec = httptest.NewRecorder()
	require.NoError(t, s.Save(rec, next, again))
	assert.Empty(t, rec.Result().Cookies())
}

func TestStore_SurvivesRegistryLoss(t *testing.T) {
	s := newTestStore(t, newTestRegistry(t, "http://api.test"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	e, err := s.Load(req)
	require.NoError(t, err)
	require.NoError(t, e.Client.RestoreCookies("SESSION=abc"))
	rec := httptest.NewRecorder()
	require.NoError(t, s.Save(rec, req, e))

	restarted := newTestStore(t, NewRegistry(RegistryConfig{
		APIBaseURL: "http://api.test",
		IdleTTL:    time.Minute,
		Logger:     zerolog.Nop(),
	}))
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(rec.Result().Cookies()[0])

	restored, err := restarted.Load(next)
	require.NoError(t, err)
	assert.Equal(t, e.ID, restored.ID)
	assert.Equal(t, "SESSION=abc", restored.Client.Cookies())
}

func TestStore_TamperedCookieStartsFresh(t *testing.T) {
	s := newTestStore(t, newTestRegistry(t, "http://api.test"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "garbage"})

	e, err := s.Load(req)
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Empty(t, e.Client.Cookies())
}
