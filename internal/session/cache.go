package session

import (
	"context"
	"sync"

	"library-web/internal/api"
	"library-web/internal/models"

	"github.com/rs/zerolog"
)

type Authenticator interface {
	Me(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Logout(ctx context.Context) error
}

// State is a read-only snapshot of the cache.
type State struct {
	User    *models.User
	Loading bool
}

// Cache is the single source of truth for "who is signed in" within one
// client instance. Only its own operations change it.
type Cache struct {
	auth             Authenticator
	clearCredentials func()
	logger           zerolog.Logger

	mu          sync.RWMutex
	user        *models.User
	loading     bool
	initialized bool
	// version counts user changes made by Login, Register and Logout.
	version uint64
}

// NewCache starts in the loading state; Init resolves it. clearCredentials,
// when set, is called on logout to drop the API session cookie.
func NewCache(auth Authenticator, clearCredentials func(), logger zerolog.Logger) *Cache {
	return &Cache{
		auth:             auth,
		clearCredentials: clearCredentials,
		logger:           logger,
		loading:          true,
	}
}

func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{User: c.user, Loading: c.loading}
}

func (c *Cache) User() *models.User {
	return c.State().User
}

// Init runs the first session check. Only the first caller performs it;
// callers arriving while it is in flight return at once and observe Loading.
func (c *Cache) Init(ctx context.Context) {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return
	}
	c.initialized = true
	c.mu.Unlock()

	c.Refresh(ctx)
}

// Refresh re-runs the "who am I" check. A 401 clears the user; any other
// failure keeps whatever user was cached before the call. An answer that
// arrives after a login, registration or logout on the same cache is stale
// and is dropped.
func (c *Cache) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.loading = true
	version := c.version
	c.mu.Unlock()

	user, err := c.auth.Me(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if c.version != version {
		c.logger.Debug().Msg("Discarding stale session check")
		return
	}
	switch {
	case err == nil:
		c.user = user
	case api.IsUnauthorized(err):
		c.user = nil
	default:
		c.logger.Warn().Err(err).Msg("Failed to fetch session")
	}
}

func (c *Cache) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	user, err := c.auth.Login(ctx, models.LoginRequest{Identifier: identifier, Password: password})
	if err != nil {
		return nil, err
	}
	c.setUser(user)
	return user, nil
}

func (c *Cache) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	user, err := c.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	c.setUser(user)
	return user, nil
}

// Logout ends the server-side session on a best-effort basis. Local state is
// cleared even when the call fails.
func (c *Cache) Logout(ctx context.Context) {
	if err := c.auth.Logout(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("Logout request failed")
	}
	if c.clearCredentials != nil {
		c.clearCredentials()
	}
	c.setUser(nil)
}

func (c *Cache) setUser(user *models.User) {
	c.mu.Lock()
	c.user = user
	c.loading = false
	c.initialized = true
	c.version++
	c.mu.Unlock()
}
