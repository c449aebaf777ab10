package trakt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/flixor/flixor/cache"
)

func staticToken(tok string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok})
}

func newTestCache(t *testing.T) *cache.Manager {
	t.Helper()
	m, err := cache.NewManager(t.TempDir(), cache.WithSweepInterval(0))
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func TestRequestHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2", r.Header.Get("trakt-api-version"))
		require.Equal(t, "client-123", r.Header.Get("trakt-api-key"))
		require.Equal(t, "Bearer tok-456", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c, err := New("client-123", WithBaseURL(srv.URL), WithTokenSource(staticToken("tok-456")))
	require.NoError(t, err)

	_, err = c.Watchlist(context.Background())
	require.NoError(t, err)
}

func TestTrendingMovies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/movies/trending", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"watchers":42,"movie":{"title":"The Matrix","year":1999,"ids":{"trakt":1,"tmdb":603}}}]`))
	}))
	t.Cleanup(srv.Close)

	c, err := New("client-123", WithBaseURL(srv.URL))
	require.NoError(t, err)

	got, err := c.TrendingMovies(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 42, got[0].Watchers)
	require.Equal(t, 603, got[0].Movie.IDs.TMDB)
}

func TestWatchlistRequiresToken(t *testing.T) {
	c, err := New("client-123")
	require.NoError(t, err)

	_, err = c.Watchlist(context.Background())
	require.Error(t, err)
}

func TestWatchlistMutationInvalidatesCache(t *testing.T) {
	var listCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sync/watchlist", func(w http.ResponseWriter, r *http.Request) {
		listCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"rank":1,"type":"movie","movie":{"title":"The Matrix","year":1999,"ids":{"tmdb":603}}}]`))
	})
	mux.HandleFunc("POST /sync/watchlist", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"added":{"movies":1,"shows":0}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	m := newTestCache(t)
	c, err := New("client-123", WithBaseURL(srv.URL), WithTokenSource(staticToken("tok")), WithCache(m))
	require.NoError(t, err)

	ctx := context.Background()

	// Prime and hit the cache.
	_, err = c.Watchlist(ctx)
	require.NoError(t, err)
	_, err = c.Watchlist(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, listCalls.Load())

	res, err := c.AddToWatchlist(ctx, SyncItems{Movies: []Movie{{IDs: IDs{TMDB: 603}}}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Added.Movies)

	// The mutation must have invalidated the cached list.
	_, err = c.Watchlist(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, listCalls.Load(), "watchlist read after mutation must hit upstream")
}
