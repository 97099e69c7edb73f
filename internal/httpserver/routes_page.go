// internal/httpserver/routes_page.go
//
// Server-rendered game page.
// Form posts mutate the session and redirect back to "/" (Post/Redirect/Get),
// so reloading the page never resubmits a guess. Validation problems are
// carried to the next render as a one-shot notice.

package httpserver

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/npsguess/internal/store"
)

var templateFuncs = template.FuncMap{
	"km": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"inc": func(i int) int { return i + 1 },
}

type pageData struct {
	View GameView
	Over bool
}

func (s *Server) mountPage(r chi.Router) {
	r.Get("/", s.handlePage)
	r.Post("/guess", s.pageAction(func(sess *store.Session, req *http.Request) error {
		return s.guess(req.Context(), sess, req.FormValue("guess"))
	}))
	r.Post("/giveup", s.pageAction(func(sess *store.Session, req *http.Request) error {
		return s.giveUp(req.Context(), sess)
	}))
	r.Post("/new", s.pageAction(func(sess *store.Session, req *http.Request) error {
		return s.startGame(req.Context(), sess, req.FormValue("mode") == "daily")
	}))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(w, r)
	status := http.StatusOK

	if err := s.ensureGame(r.Context(), &sess); err != nil {
		status = statusFor(err)
		if sess.Notice == "" {
			sess.Notice = messageFor(err)
		}
	}

	data := pageData{
		View: s.view(sess, sess.Notice),
		Over: sess.Game.Over(),
	}

	sess.Notice = ""
	if err := s.saveSession(r.Context(), sess); err != nil {
		log.Error().Err(err).Str("session", sess.ID).Msg("save session")
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		log.Error().Err(err).Msg("render page")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// pageAction runs fn against the caller's session, stores any error as a
// notice, and redirects to the page.
func (s *Server) pageAction(fn func(sess *store.Session, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.loadSession(w, r)
		if err := fn(&sess, r); err != nil {
			if statusFor(err) == http.StatusInternalServerError {
				log.Error().Err(err).Str("session", sess.ID).Msg("page action")
			}
			sess.Notice = messageFor(err)
		}
		if err := s.saveSession(r.Context(), sess); err != nil {
			log.Error().Err(err).Str("session", sess.ID).Msg("save session")
			http.Error(w, "save failed", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
