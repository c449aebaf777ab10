// Package tmdb is a thin client for the TMDB API, covering the endpoints
// the browsing UI uses. Responses are memoized through the shared cache
// when one is attached.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/flixor/flixor/cache"
)

const DefaultBaseURL = "https://api.themoviedb.org/3"

type Client struct {
	http    *http.Client
	baseURL *url.URL
	apiKey  string

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

func WithCache(m *cache.Manager) Option {
	return func(c *Client) { c.cache = m }
}

func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("apiKey required")
	}
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		http:    http.DefaultClient,
		baseURL: u,
		apiKey:  apiKey,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Trending returns the trending titles for mediaType ("movie", "tv" or
// "all") over window ("day" or "week").
func (c *Client) Trending(ctx context.Context, mediaType, window string) (*Page, error) {
	return getJSON[*Page](ctx, c, path.Join("/trending", mediaType, window), nil, cache.TTLTrending)
}

// MovieDetails returns the full details for a movie.
func (c *Client) MovieDetails(ctx context.Context, id int) (*Movie, error) {
	return getJSON[*Movie](ctx, c, "/movie/"+strconv.Itoa(id), nil, cache.TTLStatic)
}

// ShowDetails returns the full details for a TV show.
func (c *Client) ShowDetails(ctx context.Context, id int) (*Show, error) {
	return getJSON[*Show](ctx, c, "/tv/"+strconv.Itoa(id), nil, cache.TTLStatic)
}

// SearchMulti searches movies and TV shows together.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (*Page, error) {
	q := map[string]string{"query": query, "page": strconv.Itoa(page)}
	return getJSON[*Page](ctx, c, "/search/multi", q, cache.TTLShort)
}

// getJSON resolves a GET endpoint through the cache when one is attached.
// The cache key excludes the api key, which does not discriminate the
// response.
func getJSON[T any](ctx context.Context, c *Client, p string, q map[string]string, ttl time.Duration) (T, error) {
	if c.cache == nil {
		return fetchJSON[T](ctx, c, p, q)
	}
	key := cache.Key("tmdb", p, q)
	return cache.GetOrFetch(ctx, c.cache, key, ttl, func(ctx context.Context) (T, error) {
		return fetchJSON[T](ctx, c, p, q)
	})
}

func fetchJSON[T any](ctx context.Context, c *Client, p string, q map[string]string) (T, error) {
	var out T
	u := *c.baseURL
	u.Path = path.Join(u.Path, p)
	qq := u.Query()
	for k, v := range q {
		qq.Set(k, v)
	}
	qq.Set("api_key", c.apiKey)
	u.RawQuery = qq.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return out, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("tmdb: %s returned %s", p, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("tmdb: decode %s: %w", p, err)
	}
	return out, nil
}
