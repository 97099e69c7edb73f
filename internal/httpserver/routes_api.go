// internal/httpserver/routes_api.go
//
// JSON API mirroring the HTML page, for a separate front end.
//
//	GET  /api/game          current game (starts one if needed)
//	POST /api/game/new      start a new game, {"mode": "daily"} for the daily park
//	POST /api/game/guess    {"guess": "..."}
//	POST /api/game/giveup   reveal the answer
//
// Errors are {"error": "<message>"} with 400 (empty guess), 409 (game over,
// or daily park already played today), or 503 (no park data).

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/npsguess/internal/store"
)

type guessReq struct {
	Guess string `json:"guess"`
}

type newGameReq struct {
	Mode string `json:"mode"` // "" or "random" | "daily"
}

type errorRes struct {
	Error string `json:"error"`
}

func (s *Server) mountAPI(r chi.Router) {
	r.Get("/game", s.apiAction(func(sess *store.Session, req *http.Request) error {
		return s.ensureGame(req.Context(), sess)
	}))
	r.Post("/game/new", s.handleAPINew)
	r.Post("/game/guess", s.handleAPIGuess)
	r.Post("/game/giveup", s.apiAction(func(sess *store.Session, req *http.Request) error {
		return s.giveUp(req.Context(), sess)
	}))
}

func (s *Server) handleAPINew(w http.ResponseWriter, r *http.Request) {
	var body newGameReq
	// the body is optional
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "invalid_json"})
		return
	}
	s.apiAction(func(sess *store.Session, req *http.Request) error {
		return s.startGame(req.Context(), sess, body.Mode == "daily")
	})(w, r)
}

func (s *Server) handleAPIGuess(w http.ResponseWriter, r *http.Request) {
	var body guessReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "invalid_json"})
		return
	}
	s.apiAction(func(sess *store.Session, req *http.Request) error {
		return s.guess(req.Context(), sess, body.Guess)
	})(w, r)
}

// apiAction runs fn against the caller's session and replies with the
// resulting GameView, or with a mapped error.
func (s *Server) apiAction(fn func(sess *store.Session, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.loadSession(w, r)
		actionErr := fn(&sess, r)

		if err := s.saveSession(r.Context(), sess); err != nil {
			log.Error().Err(err).Str("session", sess.ID).Msg("save session")
			writeJSON(w, http.StatusInternalServerError, errorRes{Error: "save_failed"})
			return
		}
		if actionErr != nil {
			code := statusFor(actionErr)
			if code == http.StatusInternalServerError {
				log.Error().Err(actionErr).Str("session", sess.ID).Msg("api action")
			}
			writeJSON(w, code, errorRes{Error: messageFor(actionErr)})
			return
		}
		writeJSON(w, http.StatusOK, s.view(sess, ""))
	}
}
