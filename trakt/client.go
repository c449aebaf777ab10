// Package trakt is a thin client for the Trakt API. Read endpoints are
// memoized through the shared cache; watchlist mutations invalidate every
// cached trakt key so the next read reflects the change.
//
// Authentication is a bearer token supplied by an oauth2.TokenSource; how
// that token was obtained (device-code flow, stored refresh token) is the
// caller's business.
package trakt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/flixor/flixor/cache"
)

const (
	DefaultBaseURL = "https://api.trakt.tv"
	apiVersion     = "2"
)

type Client struct {
	http     *http.Client
	baseURL  *url.URL
	clientID string
	tokens   oauth2.TokenSource // optional; nil means unauthenticated endpoints only

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

func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithCache(m *cache.Manager) Option {
	return func(c *Client) { c.cache = m }
}

func New(clientID string, opts ...Option) (*Client, error) {
	if clientID == "" {
		return nil, errors.New("clientID required")
	}
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		http:     http.DefaultClient,
		baseURL:  u,
		clientID: clientID,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// TrendingMovies returns the movies being watched right now.
func (c *Client) TrendingMovies(ctx context.Context) ([]TrendingMovie, error) {
	return getJSON[[]TrendingMovie](ctx, c, "/movies/trending", nil, cache.TTLTrending)
}

// TrendingShows returns the shows being watched right now.
func (c *Client) TrendingShows(ctx context.Context) ([]TrendingShow, error) {
	return getJSON[[]TrendingShow](ctx, c, "/shows/trending", nil, cache.TTLTrending)
}

// Watchlist returns the authenticated user's watchlist. Requires a token
// source.
func (c *Client) Watchlist(ctx context.Context) ([]ListItem, error) {
	if c.tokens == nil {
		return nil, errors.New("trakt: watchlist requires a token source")
	}
	return getJSON[[]ListItem](ctx, c, "/sync/watchlist", nil, cache.TTLShort)
}

// AddToWatchlist adds items to the user's watchlist and invalidates the
// cached trakt entries.
func (c *Client) AddToWatchlist(ctx context.Context, items SyncItems) (*SyncResult, error) {
	return c.mutateWatchlist(ctx, "/sync/watchlist", items)
}

// RemoveFromWatchlist removes items from the user's watchlist and
// invalidates the cached trakt entries.
func (c *Client) RemoveFromWatchlist(ctx context.Context, items SyncItems) (*SyncResult, error) {
	return c.mutateWatchlist(ctx, "/sync/watchlist/remove", items)
}

func (c *Client) mutateWatchlist(ctx context.Context, p string, items SyncItems) (*SyncResult, error) {
	if c.tokens == nil {
		return nil, errors.New("trakt: watchlist requires a token source")
	}
	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("trakt: encode sync items: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, p, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var res SyncResult
	if err := c.do(req, p, &res); err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.InvalidatePattern("trakt:*")
	}
	return &res, nil
}

func (c *Client) newRequest(ctx context.Context, method, p string, body *bytes.Reader) (*http.Request, error) {
	u := *c.baseURL
	u.Path = path.Join(u.Path, p)
	var r *http.Request
	var err error
	if body != nil {
		r, err = http.NewRequestWithContext(ctx, method, u.String(), body)
	} else {
		r, err = http.NewRequestWithContext(ctx, method, u.String(), nil)
	}
	if err != nil {
		return nil, err
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("trakt-api-version", apiVersion)
	r.Header.Set("trakt-api-key", c.clientID)
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("trakt: token: %w", err)
		}
		tok.SetAuthHeader(r)
	}
	return r, nil
}

func (c *Client) do(req *http.Request, p string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("trakt: %s returned %s", p, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("trakt: decode %s: %w", p, err)
	}
	return nil
}

func getJSON[T any](ctx context.Context, c *Client, p string, q map[string]string, ttl time.Duration) (T, error) {
	if c.cache == nil {
		return fetchJSON[T](ctx, c, p, q)
	}
	key := cache.Key("trakt", p, q)
	return cache.GetOrFetch(ctx, c.cache, key, ttl, func(ctx context.Context) (T, error) {
		return fetchJSON[T](ctx, c, p, q)
	})
}

func fetchJSON[T any](ctx context.Context, c *Client, p string, q map[string]string) (T, error) {
	var out T
	req, err := c.newRequest(ctx, http.MethodGet, p, nil)
	if err != nil {
		return out, err
	}
	if len(q) > 0 {
		qq := req.URL.Query()
		for k, v := range q {
			qq.Set(k, v)
		}
		req.URL.RawQuery = qq.Encode()
	}
	if err := c.do(req, p, &out); err != nil {
		return out, err
	}
	return out, nil
}
