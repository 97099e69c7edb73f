package httpserver

import (
	"math"

	"github.com/robalobadob/npsguess/internal/geo"
	"github.com/robalobadob/npsguess/internal/park"
	"github.com/robalobadob/npsguess/internal/store"
)

const puzzleCaption = "Guess this National Park!"

// GameView is what both the HTML page and the JSON API render.
// Nothing in it identifies the target while the game is in progress.
type GameView struct {
	Status       string        `json:"status"`
	Daily        bool          `json:"daily"`
	DailyPlayed  bool          `json:"dailyPlayed"` // today's daily park has been started
	ImageURL     string        `json:"imageUrl,omitempty"`
	ImageCaption string        `json:"imageCaption,omitempty"`
	GuessCount   int           `json:"guessCount"`
	MaxGuesses   int           `json:"maxGuesses"`
	Remaining    int           `json:"remaining"`
	Score        int           `json:"score"`
	Streak       int           `json:"streak"`
	GamesPlayed  int           `json:"gamesPlayed"`
	History      []AttemptView `json:"history"`
	Last         *LastView     `json:"last,omitempty"`
	Answer       *ParkView     `json:"answer,omitempty"` // only once the game is over
	Notice       string        `json:"notice,omitempty"`
}

// AttemptView is one row of the guess history.
type AttemptView struct {
	Guess         string  `json:"guess"`
	ParkName      string  `json:"parkName,omitempty"`
	Recognized    bool    `json:"recognized"`
	ClueAvailable bool    `json:"clueAvailable"`
	DistanceKm    float64 `json:"distanceKm,omitempty"`
	DistanceMi    float64 `json:"distanceMi,omitempty"`
	Bearing       float64 `json:"bearing"`
	Direction     string  `json:"direction,omitempty"`
	Arrow         string  `json:"arrow,omitempty"`
}

// LastView is the outcome of the most recent guess.
type LastView struct {
	AttemptView
	Correct bool `json:"correct"`
}

// ParkView describes the answer after the game ends.
type ParkView struct {
	Code        string `json:"code,omitempty"`
	Name        string `json:"name"`
	Place       string `json:"place,omitempty"`
	StateName   string `json:"stateName,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Caption     string `json:"caption,omitempty"`
}

func newGameView(sess store.Session, notice string) GameView {
	st, last := sess.Game, sess.Last
	v := GameView{
		Status:      string(st.Status),
		Daily:       sess.Daily,
		GuessCount:  st.GuessCount,
		MaxGuesses:  st.MaxGuesses,
		Remaining:   st.Remaining(),
		Score:       st.Score,
		Streak:      st.Streak,
		GamesPlayed: st.GamesPlayed,
		History:     make([]AttemptView, 0, len(st.History)),
		Notice:      notice,
	}
	if st.Target == nil {
		v.Status = "no_data"
		return v
	}

	v.ImageURL = st.Target.ImageURL
	v.ImageCaption = puzzleCaption
	for _, a := range st.History {
		v.History = append(v.History, attemptView(a.Guess, a.ParkName, a.Clue))
	}
	if last != nil {
		name := ""
		if last.Park != nil {
			name = last.Park.Name
		}
		v.Last = &LastView{AttemptView: attemptView(last.Guess, name, last.Clue), Correct: last.Correct}
	}
	if st.Over() {
		v.Answer = parkView(st.Target)
		if c := st.Target.ImageCaption; c != "" {
			v.ImageCaption = c
		}
	}
	return v
}

func attemptView(guess, parkName string, clue *geo.Clue) AttemptView {
	av := AttemptView{Guess: guess, ParkName: parkName, Recognized: parkName != ""}
	if clue != nil {
		av.ClueAvailable = true
		av.DistanceKm = clue.RoundedKm()
		av.DistanceMi = math.Round(clue.Miles()*10) / 10
		av.Bearing = math.Mod(math.Round(clue.BearingDegrees), 360)
		av.Direction = clue.Direction
		av.Arrow = clue.Arrow
	}
	return av
}

func parkView(p *park.Park) *ParkView {
	return &ParkView{
		Code:        p.Code,
		Name:        p.Name,
		Place:       p.Place(),
		StateName:   p.StateName,
		Description: p.Description,
		URL:         p.URL,
		Caption:     p.ImageCaption,
	}
}
