// Package plextv is a thin client for the plex.tv account API: user
// identity and the resources (servers) linked to the account. Responses
// are memoized through the shared cache when one is attached.
package plextv

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/flixor/flixor/cache"
)

const DefaultBaseURL = "https://plex.tv/api/v2"

type Client struct {
	http       *http.Client
	baseURL    *url.URL
	token      string
	identifier string // X-Plex-Client-Identifier
	product    string
	version    string

	cache *cache.Manager // optional; nil means no caching
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.baseURL = u
		}
	}
}

// WithClientIdentifier pins the X-Plex-Client-Identifier instead of the
// random one generated per Client. Plex ties device registrations to this
// value, so real deployments should persist and reuse it.
func WithClientIdentifier(id string) Option {
	return func(c *Client) { c.identifier = id }
}

func WithCache(m *cache.Manager) Option {
	return func(c *Client) { c.cache = m }
}

func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("token required")
	}
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		http:       http.DefaultClient,
		baseURL:    u,
		token:      token,
		identifier: uuid.NewString(),
		product:    "Flixor",
		version:    "1.0",
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// User returns the account behind the token.
func (c *Client) User(ctx context.Context) (*User, error) {
	return getJSON[*User](ctx, c, "/user", cache.TTLDynamic)
}

// Resources returns the devices linked to the account; the UI filters for
// entries that provide the "server" capability.
func (c *Client) Resources(ctx context.Context) ([]Resource, error) {
	return getJSON[[]Resource](ctx, c, "/resources", cache.TTLDynamic)
}

func getJSON[T any](ctx context.Context, c *Client, p string, ttl time.Duration) (T, error) {
	if c.cache == nil {
		return fetchJSON[T](ctx, c, p)
	}
	key := cache.Key("plextv", p, nil)
	return cache.GetOrFetch(ctx, c.cache, key, ttl, func(ctx context.Context) (T, error) {
		return fetchJSON[T](ctx, c, p)
	})
}

func fetchJSON[T any](ctx context.Context, c *Client, p string) (T, error) {
	var out T
	u := *c.baseURL
	u.Path = path.Join(u.Path, p)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return out, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("X-Plex-Client-Identifier", c.identifier)
	req.Header.Set("X-Plex-Product", c.product)
	req.Header.Set("X-Plex-Version", c.version)

	resp, err := c.http.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("plextv: %s returned %s", p, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("plextv: decode %s: %w", p, err)
	}
	return out, nil
}
