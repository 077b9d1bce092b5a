package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Request describes one call to the library API. Path is relative to the
// client's base URL and may carry a query string.
type Request struct {
	Method string
	Path   string
	Body   any
	Header http.Header
}

// Client is the authenticated fetch wrapper. Each client owns the API
// credentials of exactly one session; every request carries them.
type Client struct {
	base       string
	cookieURLs []*url.URL
	jar        *sessionJar
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewTransport returns the shared connection pool used by every session's
// client. Only dial and idle limits are set: calls are bounded by the caller's
// context, never by a client-wide timeout.
func NewTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

func New(baseURL string, transport http.RoundTripper, logger zerolog.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", baseURL)
	}
	if transport == nil {
		transport = NewTransport()
	}

	jar := newSessionJar()
	return &Client{
		base:       base,
		cookieURLs: cookieScopes(parsed),
		jar:        jar,
		httpClient: &http.Client{
			Transport: transport,
			Jar:       jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.base
}

// Do performs a single attempt. On a non-2xx status it returns a
// *RequestError; on success the body, when present, is decoded into out.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, req.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.base+req.Path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, req.Path, err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", req.Path).Msg("API call failed")
		return fmt.Errorf("%s %s: %w", method, req.Path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, req.Path, err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API call")

	text := bytes.TrimSpace(payload)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newRequestError(resp.StatusCode, text)
	}
	if len(text) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(text, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, req.Path, err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

// cookieScopes lists the API paths whose cookies make up the session. A
// cookie set without an explicit Path is scoped to the directory of the call
// that set it, so the auth directory is consulted as well as the root.
func cookieScopes(base *url.URL) []*url.URL {
	return []*url.URL{
		base.JoinPath("/"),
		base.JoinPath("/api/"),
		base.JoinPath("/api/auth/"),
	}
}

// Cookies serializes the API session cookies as a Cookie header value.
func (c *Client) Cookies() string {
	seen := make(map[string]bool)
	var cookies []*http.Cookie
	for _, u := range c.cookieURLs {
		for _, ck := range c.jar.Cookies(u) {
			if seen[ck.Name] {
				continue
			}
			seen[ck.Name] = true
			cookies = append(cookies, ck)
		}
	}
	return encodeCookies(cookies)
}

// RestoreCookies loads cookies previously produced by Cookies.
func (c *Client) RestoreCookies(header string) error {
	cookies, err := decodeCookies(header)
	if err != nil {
		return fmt.Errorf("restore API cookies: %w", err)
	}
	if len(cookies) > 0 {
		c.jar.SetCookies(c.cookieURLs[0], cookies)
	}
	return nil
}

// ClearCookies drops every API credential held by this client.
func (c *Client) ClearCookies() {
	c.jar.reset()
}

// Probe checks that the API answers the session endpoint. Both an
// authenticated and an anonymous answer count as reachable.
func (c *Client) Probe(ctx context.Context) error {
	err := c.Get(ctx, "/api/auth/me", nil)
	if err == nil || IsUnauthorized(err) {
		return nil
	}
	return err
}
