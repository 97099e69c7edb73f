// Package daily picks the same target park for every player on a given day.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"time"
)

// ErrAlreadyPlayed is returned when a player asks for a second daily park
// on the same UTC date.
var ErrAlreadyPlayed = errors.New("daily park already played today")

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Rand is a game.Rand whose IntN depends only on the UTC date and the salt,
// so every player starting a daily game on the same day gets the same park
// (as long as the catalog order is unchanged).
type Rand struct {
	Date time.Time
	Salt string
}

// IntN returns HMAC-SHA256(salt, YYYY-MM-DD) mod n.
func (r Rand) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(r.Salt))
	h.Write([]byte(DateKey(r.Date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}
