// internal/game/types.go
//
// Core type definitions for the park guessing game.
// Defines:
//   - Status: lifecycle of one playthrough.
//   - State: everything a playthrough needs, passed by value between operations.
//   - Attempt: one counted guess in the history.
//   - Result: the per-guess outcome handed to the presentation layer.

package game

import (
	"errors"

	"github.com/robalobadob/npsguess/internal/geo"
	"github.com/robalobadob/npsguess/internal/park"
)

// DefaultMaxGuesses is the number of attempts per game.
const DefaultMaxGuesses = 6

var (
	ErrNoData     = errors.New("no park data available")
	ErrGameOver   = errors.New("game is over")
	ErrEmptyGuess = errors.New("empty guess")
)

// Status is the coarse state of a game.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
	StatusGaveUp     Status = "gave_up"
)

// Terminal reports whether no further guesses are accepted.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusGaveUp
}

// Rand is the random source used to pick a target park.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// State holds one playthrough plus the counters that survive across games.
// Operations never mutate a State in place; they return the next one.
type State struct {
	Target      *park.Park // nil until a game has started with data
	GuessCount  int
	MaxGuesses  int
	Score       int // games won, cumulative
	Streak      int // consecutive wins, cumulative
	GamesPlayed int // finished games, cumulative
	History     []Attempt
	Status      Status
}

// Attempt is one counted (wrong or unrecognized) guess.
type Attempt struct {
	Guess    string    `json:"guess"`
	ParkName string    `json:"parkName,omitempty"` // empty when the guess was not recognized
	Clue     *geo.Clue `json:"clue,omitempty"`     // nil when unrecognized or coordinates are missing
}

// Recognized reports whether the guess resolved to a park.
func (a Attempt) Recognized() bool { return a.ParkName != "" }

// Result is the outcome of a single guess.
type Result struct {
	Guess   string
	Park    *park.Park // nil when the guess was not recognized
	Correct bool
	Clue    *geo.Clue
	ClueErr error // geo.ErrClueUnavailable when the matched park has no coordinates
}
