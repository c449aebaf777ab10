// Package routes wires the HTTP API the web frontend talks to.
package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/flixor/flixor/cache"
	"github.com/flixor/flixor/plextv"
	"github.com/flixor/flixor/tmdb"
	"github.com/flixor/flixor/trakt"
)

type Server struct {
	Router *chi.Mux

	cache  *cache.Manager
	tmdb   *tmdb.Client   // nil when not configured
	trakt  *trakt.Client  // nil when not configured
	plextv *plextv.Client // nil when not configured
}

type ServerOptions struct {
	Cache   *cache.Manager
	TMDB    *tmdb.Client
	Trakt   *trakt.Client
	PlexTV  *plextv.Client
	Metrics http.Handler // optional /metrics handler
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	s := &Server{
		Router: r,
		cache:  opts.Cache,
		tmdb:   opts.TMDB,
		trakt:  opts.Trakt,
		plextv: opts.PlexTV,
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/trending", s.handleTrending)
		r.Get("/search", s.handleSearch)
		r.Get("/servers", s.handleServers)
		r.Route("/cache", func(r chi.Router) {
			r.Get("/stats", s.handleCacheStats)
			r.Post("/invalidate", s.handleCacheInvalidate)
			r.Post("/clear", s.handleCacheClear)
		})
	})

	return s
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	if s.tmdb == nil {
		http.Error(w, "tmdb not configured", http.StatusServiceUnavailable)
		return
	}
	mediaType := r.URL.Query().Get("type")
	if mediaType == "" {
		mediaType = "all"
	}
	window := r.URL.Query().Get("window")
	if window == "" {
		window = "week"
	}
	page, err := s.tmdb.Trending(r.Context(), mediaType, window)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, page)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.tmdb == nil {
		http.Error(w, "tmdb not configured", http.StatusServiceUnavailable)
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			http.Error(w, "invalid page parameter", http.StatusBadRequest)
			return
		}
		page = n
	}
	res, err := s.tmdb.SearchMulti(r.Context(), query, page)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleServers(w http.ResponseWriter, r *http.Request) {
	if s.plextv == nil {
		http.Error(w, "plex.tv not configured", http.StatusServiceUnavailable)
		return
	}
	resources, err := s.plextv.Resources(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	servers := resources[:0:0]
	for _, res := range resources {
		if res.Provides == "server" {
			servers = append(servers, res)
		}
	}
	writeJSON(w, servers)
}

type cacheStatsResponse struct {
	cache.Stats
	DiskBytes int64   `json:"disk_bytes"`
	HitRate   float64 `json:"hit_rate"`
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats := s.cache.Stats()
	writeJSON(w, cacheStatsResponse{
		Stats:     stats,
		DiskBytes: s.cache.DiskSize(),
		HitRate:   stats.HitRate(),
	})
}

func (s *Server) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		http.Error(w, "missing pattern parameter", http.StatusBadRequest)
		return
	}
	removed := s.cache.InvalidatePattern(pattern)
	writeJSON(w, map[string]int{"removed": removed})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.cache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
