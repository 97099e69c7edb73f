// main.go
//
// Entry point for the NPS park guessing game server.
// Responsibilities:
//   - Load configuration (.env + environment) and set up zerolog.
//   - Build the park catalog (NPS API or seed file) behind a TTL cache,
//     optionally backed by a SQLite/Postgres snapshot.
//   - Serve the game over HTTP and sweep idle sessions in the background.
//   - Shut down gracefully on SIGINT/SIGTERM.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/npsguess/internal/catalog"
	"github.com/robalobadob/npsguess/internal/config"
	"github.com/robalobadob/npsguess/internal/httpserver"
	"github.com/robalobadob/npsguess/internal/snapshot"
	"github.com/robalobadob/npsguess/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	provider := newProvider(cfg)

	var snaps catalog.Snapshots
	if cfg.SnapshotDSN != "" {
		st, err := snapshot.Open(cfg.SnapshotDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("open catalog snapshot")
		}
		defer st.Close()
		snaps = st
	}
	cache := catalog.NewCache(provider, snaps, cfg.CatalogTTL)

	sessions := store.NewMemoryStore()
	srv, err := httpserver.New(httpserver.Options{
		Store:         sessions,
		Catalog:       cache,
		MaxGuesses:    cfg.MaxGuesses,
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL,
		CookieName:    cfg.CookieName,
		SecureCookies: cfg.Production,
		ClientOrigin:  cfg.ClientOrigin,
		DailySalt:     cfg.DailySalt,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the catalog cache.
	go func() {
		if _, err := cache.GetOrRefresh(ctx, time.Now()); err != nil {
			log.Warn().Err(err).Msg("initial catalog load failed; will retry on demand")
		}
	}()
	go sweepSessions(ctx, sessions, cfg.SessionTTL)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Str("catalog", provider.Name()).Msg("starting server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func newProvider(cfg *config.Config) catalog.Provider {
	if cfg.CatalogSource == catalog.SourceSeed {
		return catalog.NewSeedProvider(cfg.SeedFile)
	}
	return catalog.NewNPSClient(cfg.NPSBaseURL, cfg.NPSAPIKey, cfg.CatalogLimit)
}

// sweepSessions drops sessions idle for longer than ttl until ctx is done.
func sweepSessions(ctx context.Context, st store.Store, ttl time.Duration) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := st.Sweep(ctx, now.Add(-ttl)); n > 0 {
				log.Info().Int("removed", n).Msg("swept idle sessions")
			}
		}
	}
}
