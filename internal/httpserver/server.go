// internal/httpserver/server.go
//
// HTTP server wiring for the park guessing game.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, access log, panic recovery, timeouts).
//   - HTML game page: "/", POST /guess, /giveup, /new (Post/Redirect/Get).
//   - JSON API under /api with CORS for a separate front end.
//   - Diagnostics: "/health", "/debug/catalog".
//
// Notes:
//   - Every browser gets its own session (see session.go); there are no accounts.
//   - The catalog is fetched lazily through catalog.Cache on first use.
//   - The target park is only described in responses once the game is over.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/npsguess/assets"
	"github.com/robalobadob/npsguess/internal/catalog"
	"github.com/robalobadob/npsguess/internal/daily"
	"github.com/robalobadob/npsguess/internal/game"
	"github.com/robalobadob/npsguess/internal/store"
)

// Catalog is the subset of *catalog.Cache the server needs.
type Catalog interface {
	GetOrRefresh(ctx context.Context, now time.Time) (catalog.Catalog, error)
	Peek() (catalog.Catalog, bool)
}

// Options configures a Server. Store, Catalog and SessionSecret are required.
type Options struct {
	Store         store.Store
	Catalog       Catalog
	Rand          game.Rand // defaults to math/rand/v2's global source
	MaxGuesses    int
	SessionSecret string
	SessionTTL    time.Duration
	CookieName    string
	SecureCookies bool
	ClientOrigin  string
	DailySalt     string           // keys the daily park; defaults to a fixed value
	Now           func() time.Time // defaults to time.Now
}

// Server bundles the router with the session store and catalog.
type Server struct {
	r          *chi.Mux
	store      store.Store
	catalog    Catalog
	rng        game.Rand
	maxGuesses int
	sessions   *sessionCodec
	dailySalt  string
	page       *template.Template
	now        func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) (*Server, error) {
	if opts.Store == nil || opts.Catalog == nil {
		return nil, errors.New("httpserver: store and catalog are required")
	}
	if opts.Rand == nil {
		opts.Rand = globalRand{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.CookieName == "" {
		opts.CookieName = "nps_session"
	}
	if opts.MaxGuesses <= 0 {
		opts.MaxGuesses = game.DefaultMaxGuesses
	}
	if opts.DailySalt == "" {
		opts.DailySalt = "npsguess-daily"
	}

	codec, err := newSessionCodec(opts.SessionSecret, opts.CookieName, opts.SessionTTL, opts.SecureCookies)
	if err != nil {
		return nil, err
	}
	page, err := template.New("index.html").Funcs(templateFuncs).ParseFS(assets.Templates(), "index.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}

	s := &Server{
		r:          chi.NewRouter(),
		store:      opts.Store,
		catalog:    opts.Catalog,
		rng:        opts.Rand,
		maxGuesses: opts.MaxGuesses,
		sessions:   codec,
		dailySalt:  opts.DailySalt,
		page:       page,
		now:        opts.Now,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // one log line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(30 * time.Second)) // bound handler time (first NPS fetch can be slow)

	// --- diagnostics ---
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/catalog", s.handleDebugCatalog)

	// --- game ---
	s.mountPage(s.r)
	s.r.Route("/api", func(api chi.Router) {
		api.Use(cors.New(cors.Options{
			AllowedOrigins:   []string{opts.ClientOrigin},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler)
		api.Use(jsonContentType)
		s.mountAPI(api)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s, nil
}

// Handler exposes the router, for http.Server and tests.
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router.
func (s *Server) Router() chi.Router { return s.r }

func (s *Server) handleDebugCatalog(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.catalog.Peek()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"loaded": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"loaded":    true,
		"source":    cat.Source,
		"parks":     len(cat.Parks),
		"playable":  cat.Playable(),
		"fetchedAt": cat.FetchedAt,
	})
}

// ----------------------------- game actions --------------------------------

// parks returns the current catalog's parks, or game.ErrNoData.
func (s *Server) parks(ctx context.Context) (catalog.Catalog, error) {
	cat, err := s.catalog.GetOrRefresh(ctx, s.now())
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("%w: %v", game.ErrNoData, err)
	}
	return cat, nil
}

// startGame begins a new game in sess, keeping its counters.
// A daily game picks the same park for every player on the current UTC date,
// at most once per session and date.
func (s *Server) startGame(ctx context.Context, sess *store.Session, isDaily bool) error {
	now := s.now()
	today := daily.DateKey(now)
	if isDaily && sess.DailyPlayed == today {
		return daily.ErrAlreadyPlayed
	}
	cat, err := s.parks(ctx)
	if err != nil {
		return err
	}
	rng := s.rng
	if isDaily {
		rng = daily.Rand{Date: now, Salt: s.dailySalt}
	}
	next, err := game.Start(sess.Game, cat.Parks, rng, s.maxGuesses)
	sess.Game = next
	sess.Last = nil
	sess.Daily = isDaily && err == nil
	if sess.Daily {
		sess.DailyPlayed = today
	}
	return err
}

// view renders sess for the page and the API.
func (s *Server) view(sess store.Session, notice string) GameView {
	v := newGameView(sess, notice)
	v.DailyPlayed = sess.DailyPlayed == daily.DateKey(s.now())
	return v
}

// ensureGame starts a game for sessions that have none yet.
func (s *Server) ensureGame(ctx context.Context, sess *store.Session) error {
	if sess.Game.Target != nil {
		return nil
	}
	return s.startGame(ctx, sess, false)
}

func (s *Server) guess(ctx context.Context, sess *store.Session, text string) error {
	if err := s.ensureGame(ctx, sess); err != nil {
		return err
	}
	cat, err := s.parks(ctx)
	if err != nil {
		return err
	}
	next, res, err := sess.Game.Guess(text, cat.Parks)
	if err != nil {
		return err
	}
	sess.Game = next
	sess.Last = &res
	if res.ClueErr != nil {
		log.Debug().Err(res.ClueErr).Str("park", res.Park.Name).Msg("clue unavailable")
	}
	return nil
}

func (s *Server) giveUp(ctx context.Context, sess *store.Session) error {
	if err := s.ensureGame(ctx, sess); err != nil {
		return err
	}
	next, err := sess.Game.GiveUp()
	if err != nil {
		return err
	}
	sess.Game = next
	sess.Last = nil
	return nil
}

// ----------------------------- errors --------------------------------------

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrEmptyGuess):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrGameOver), errors.Is(err, daily.ErrAlreadyPlayed):
		return http.StatusConflict
	case errors.Is(err, game.ErrNoData), errors.Is(err, catalog.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, game.ErrEmptyGuess):
		return "Please enter a park name, city, or state."
	case errors.Is(err, game.ErrGameOver):
		return "This game is over. Start a new game to keep playing."
	case errors.Is(err, daily.ErrAlreadyPlayed):
		return "You already played today's daily park. Come back tomorrow!"
	case errors.Is(err, game.ErrNoData), errors.Is(err, catalog.ErrUnavailable):
		return "No park data available right now. Please try again later."
	default:
		return "Something went wrong."
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs method, path, status, size and latency with the request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			log.Info().
				Str("req_id", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("dur", time.Since(start)).
				Msg("http")
		}()
		next.ServeHTTP(ww, r)
	})
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// globalRand draws from math/rand/v2's goroutine-safe top-level source.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }
