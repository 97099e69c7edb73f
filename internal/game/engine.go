// internal/game/engine.go
//
// Game engine for a single park-guessing playthrough.
// Responsibilities:
//   - Start a game by sampling a target park that has an image.
//   - Apply guesses: resolve the text, decide correctness, build a clue.
//   - Track state transitions: in_progress → won / lost / gave_up.
//
// Score, Streak and GamesPlayed carry over from one game to the next.

package game

import (
	"strings"

	"github.com/robalobadob/npsguess/internal/geo"
	"github.com/robalobadob/npsguess/internal/match"
	"github.com/robalobadob/npsguess/internal/park"
)

// Start begins a new game, keeping prev's cumulative counters.
// Returns ErrNoData (and a state without a target) if no park has an image.
func Start(prev State, parks []park.Park, rng Rand, maxGuesses int) (State, error) {
	if maxGuesses <= 0 {
		maxGuesses = DefaultMaxGuesses
	}
	next := State{
		MaxGuesses:  maxGuesses,
		Score:       prev.Score,
		Streak:      prev.Streak,
		GamesPlayed: prev.GamesPlayed,
		Status:      StatusInProgress,
	}

	candidates := park.Playable(parks)
	if len(candidates) == 0 {
		return next, ErrNoData
	}
	next.Target = candidates[rng.IntN(len(candidates))]
	return next, nil
}

// Guess applies one guess and returns the next state with its result.
//
// Validation rules:
//   - A target must have been chosen (ErrNoData).
//   - The game must not be finished (ErrGameOver).
//   - Blank input is rejected without consuming an attempt (ErrEmptyGuess).
//
// State transitions:
//   - Correct → won; score and streak go up, the attempt count does not.
//   - Otherwise the attempt is recorded; at MaxGuesses the game is lost
//     and the streak resets.
func (s State) Guess(text string, parks []park.Park) (State, Result, error) {
	if s.Target == nil {
		return s, Result{}, ErrNoData
	}
	if s.Status.Terminal() {
		return s, Result{}, ErrGameOver
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return s, Result{}, ErrEmptyGuess
	}

	res := Result{Guess: text, Park: match.Resolve(text, parks)}
	next := s

	if isCorrect(res.Park, s.Target) {
		res.Correct = true
		next.Status = StatusWon
		next.Score++
		next.Streak++
		next.GamesPlayed++
		return next, res, nil
	}

	att := Attempt{Guess: text}
	if res.Park != nil {
		att.ParkName = res.Park.Name
		clue, err := geo.NewClue(res.Park.Location, s.Target.Location)
		if err != nil {
			res.ClueErr = err
		} else {
			res.Clue = &clue
			att.Clue = &clue
		}
	}

	next.GuessCount++
	next.History = appendAttempt(s.History, att)
	if next.GuessCount >= next.MaxGuesses {
		next.Status = StatusLost
		next.Streak = 0
		next.GamesPlayed++
	}
	return next, res, nil
}

// GiveUp ends the current game immediately. Score is unchanged, the streak resets.
func (s State) GiveUp() (State, error) {
	if s.Target == nil {
		return s, ErrNoData
	}
	if s.Status.Terminal() {
		return s, ErrGameOver
	}
	next := s
	next.Status = StatusGaveUp
	next.Streak = 0
	next.GamesPlayed++
	return next, nil
}

// Remaining returns how many guesses are left.
func (s State) Remaining() int {
	if n := s.MaxGuesses - s.GuessCount; n > 0 {
		return n
	}
	return 0
}

// Over reports whether the current game has ended.
func (s State) Over() bool { return s.Status.Terminal() }

// isCorrect treats the target itself, or any park at the exact same coordinates,
// as a correct guess so the clue engine never reports a zero-distance hint.
func isCorrect(guessed, target *park.Park) bool {
	if guessed == nil || target == nil {
		return false
	}
	if guessed.SameAs(target) {
		return true
	}
	if guessed.Location == nil || target.Location == nil {
		return false
	}
	return geo.HaversineKm(*guessed.Location, *target.Location) == 0
}

// appendAttempt copies before appending so the previous State's history is never shared.
func appendAttempt(h []Attempt, a Attempt) []Attempt {
	out := make([]Attempt, len(h), len(h)+1)
	copy(out, h)
	return append(out, a)
}
