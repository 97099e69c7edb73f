// internal/httpserver/session.go
//
// Session cookie handling.
// The cookie carries a signed HS256 JWT whose only claim of interest is
// "sid", the key of the player's store.Session. It identifies a browser;
// it is not a login.
//
// The HMAC key is derived from SESSION_SECRET with HKDF-SHA256.

package httpserver

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/hkdf"

	"github.com/robalobadob/npsguess/internal/store"
)

const hkdfInfo = "npsguess session cookie v1"

type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// sessionCodec signs and verifies session cookies.
type sessionCodec struct {
	key    []byte
	name   string
	ttl    time.Duration
	secure bool
}

func newSessionCodec(secret, name string, ttl time.Duration, secure bool) (*sessionCodec, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return &sessionCodec{key: key, name: name, ttl: ttl, secure: secure}, nil
}

// sign returns a token for sid valid until now+ttl.
func (c *sessionCodec) sign(sid string, now time.Time) (string, time.Time, error) {
	exp := now.Add(c.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString(c.key)
	return ss, exp, err
}

// parse validates token and returns its session id.
func (c *sessionCodec) parse(token string, now time.Time) (string, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return "", err
	}
	if claims.SID == "" {
		return "", errors.New("token has no sid")
	}
	return claims.SID, nil
}

// setCookie writes the session cookie with appropriate security attributes.
func (c *sessionCodec) setCookie(w http.ResponseWriter, sid string, now time.Time) error {
	tok, exp, err := c.sign(sid, now)
	if err != nil {
		return err
	}
	sameSite := http.SameSiteLaxMode
	if c.secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: sameSite,
		Expires:  exp,
	})
	return nil
}

// loadSession returns the caller's session, creating a new one when the
// cookie is missing, invalid, expired, or points at a swept session.
// The cookie is (re)issued on every call so active players never expire.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) store.Session {
	now := s.now()
	var sess store.Session

	if c, err := r.Cookie(s.sessions.name); err == nil && c.Value != "" {
		sid, err := s.sessions.parse(c.Value, now)
		if err != nil {
			log.Debug().Err(err).Msg("discarding session cookie")
		} else if got, err := s.store.Get(r.Context(), sid); err == nil {
			sess = got
		} else {
			sess.ID = sid
		}
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}

	if err := s.sessions.setCookie(w, sess.ID, now); err != nil {
		log.Error().Err(err).Msg("sign session cookie")
	}
	return sess
}

// saveSession stamps and persists sess.
func (s *Server) saveSession(ctx context.Context, sess store.Session) error {
	sess.UpdatedAt = s.now()
	return s.store.Save(ctx, sess)
}
