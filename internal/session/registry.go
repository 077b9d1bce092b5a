package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"library-web/internal/api"
	"library-web/internal/services"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// View is a page's state holder. Close tears it down; a closed view must
// ignore responses that arrive afterwards.
type View interface {
	Close()
}

// Entry is one client instance: the API client holding the browser's API
// credentials, the identity cache, and the page currently open.
type Entry struct {
	ID     string
	Client *api.Client
	API    *services.API
	Cache  *Cache

	mu       sync.Mutex
	viewName string
	view     View
	lastSeen time.Time
}

// Activate returns the open view when it has the given name; otherwise it
// closes the open view and installs a new one built by create.
func (e *Entry) Activate(name string, create func() View) View {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.view != nil && e.viewName == name {
		return e.view
	}
	if e.view != nil {
		e.view.Close()
	}
	e.viewName = name
	e.view = create()
	return e.view
}

// CloseView tears down the open view, if any.
func (e *Entry) CloseView() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.view != nil {
		e.view.Close()
	}
	e.view = nil
	e.viewName = ""
}

func (e *Entry) touch(now time.Time) {
	e.mu.Lock()
	e.lastSeen = now
	e.mu.Unlock()
}

func (e *Entry) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSeen
}

type RegistryConfig struct {
	APIBaseURL string
	Transport  http.RoundTripper
	IdleTTL    time.Duration
	Logger     zerolog.Logger
}

// Registry maps browser-session IDs to their client instances.
type Registry struct {
	cfg    RegistryConfig
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*Entry
}

func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Transport == nil {
		cfg.Transport = api.NewTransport()
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	return &Registry{
		cfg:     cfg,
		logger:  cfg.Logger,
		now:     time.Now,
		entries: make(map[string]*Entry),
	}
}

// Lookup returns the entry for id. When the entry is unknown (first visit,
// eviction or restart) it is rebuilt under the same id with the given API
// cookies restored. An empty or malformed id yields a fresh session.
func (r *Registry) Lookup(id, apiCookies string) (*Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
		apiCookies = ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		e.touch(r.now())
		return e, nil
	}

	e, err := r.newEntry(id)
	if err != nil {
		return nil, err
	}
	if err := e.Client.RestoreCookies(apiCookies); err != nil {
		r.logger.Warn().Err(err).Str("session_id", id).Msg("Discarding unreadable API cookies")
	}
	e.touch(r.now())
	r.entries[id] = e
	return e, nil
}

func (r *Registry) newEntry(id string) (*Entry, error) {
	logger := r.logger.With().Str("session_id", id).Logger()
	client, err := api.New(r.cfg.APIBaseURL, r.cfg.Transport, logger)
	if err != nil {
		return nil, err
	}
	apiSvc := services.NewAPI(client, logger)
	return &Entry{
		ID:     id,
		Client: client,
		API:    apiSvc,
		Cache:  NewCache(apiSvc.Auth, client.ClearCookies, logger),
	}, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts entries idle for longer than the configured TTL.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.cfg.IdleTTL)

	r.mu.Lock()
	var evicted []*Entry
	for id, e := range r.entries {
		if e.idleSince().Before(cutoff) {
			evicted = append(evicted, e)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, e := range evicted {
		e.CloseView()
	}
	if len(evicted) > 0 {
		r.logger.Debug().Int("evicted", len(evicted)).Msg("Idle sessions evicted")
	}
	return len(evicted)
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := r.cfg.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
