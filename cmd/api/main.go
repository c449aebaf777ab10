// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/oauth2"

	"github.com/flixor/flixor/cache"
	"github.com/flixor/flixor/internal/config"
	"github.com/flixor/flixor/internal/http/routes"
	"github.com/flixor/flixor/plextv"
	"github.com/flixor/flixor/tmdb"
	"github.com/flixor/flixor/trakt"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config error")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("config error")
	}

	// Shared two-tier cache, one per process.
	store, err := cache.NewManager(cfg.Cache.Dir,
		cache.WithMaxEntries(cfg.Cache.MaxEntries),
		cache.WithSweepInterval(cfg.Cache.SweepInterval),
		cache.WithLogger(logger.With().Str("component", "cache").Logger()),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("cache error")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(cache.NewCollector(store))

	opts := routes.ServerOptions{
		Cache:   store,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}

	if cfg.HasTMDB() {
		c, err := tmdb.New(cfg.TMDB.APIKey, tmdb.WithCache(store))
		if err != nil {
			logger.Fatal().Err(err).Msg("tmdb error")
		}
		opts.TMDB = c
	}
	if cfg.HasTrakt() {
		topts := []trakt.Option{trakt.WithCache(store)}
		if cfg.Trakt.AccessToken != "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Trakt.AccessToken})
			topts = append(topts, trakt.WithTokenSource(ts))
		}
		c, err := trakt.New(cfg.Trakt.ClientID, topts...)
		if err != nil {
			logger.Fatal().Err(err).Msg("trakt error")
		}
		opts.Trakt = c
	}
	if cfg.HasPlexTV() {
		popts := []plextv.Option{plextv.WithCache(store)}
		if cfg.PlexTV.ClientIdentifier != "" {
			popts = append(popts, plextv.WithClientIdentifier(cfg.PlexTV.ClientIdentifier))
		}
		c, err := plextv.New(cfg.PlexTV.Token, popts...)
		if err != nil {
			logger.Fatal().Err(err).Msg("plextv error")
		}
		opts.PlexTV = c
	}

	s := routes.New(opts)
	h := hlog.NewHandler(logger)(s.Router)

	srv := &http.Server{Addr: cfg.Addr, Handler: h}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("starting api")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	store.Close()
}
