package geo

import (
	"fmt"
	"math"
)

// Clue is the distance-and-direction hint shown after a wrong guess.
type Clue struct {
	DistanceKm     float64 `json:"distanceKm"`
	BearingDegrees float64 `json:"bearingDegrees"`
	Direction      string  `json:"direction"`
	Arrow          string  `json:"arrow"`
}

// NewClue computes the clue pointing from the guessed location toward the target.
// Either point being nil or out of range yields ErrClueUnavailable.
func NewClue(from, to *Point) (Clue, error) {
	if from == nil || to == nil {
		return Clue{}, ErrClueUnavailable
	}
	if !from.Valid() || !to.Valid() {
		return Clue{}, fmt.Errorf("%w: invalid coordinate", ErrClueUnavailable)
	}
	b := InitialBearing(*from, *to)
	return Clue{
		DistanceKm:     HaversineKm(*from, *to),
		BearingDegrees: b,
		Direction:      Compass16(b),
		Arrow:          Arrow(b),
	}, nil
}

// RoundedKm returns the distance rounded to one decimal place for display.
func (c Clue) RoundedKm() float64 {
	return math.Round(c.DistanceKm*10) / 10
}

// Miles returns the distance in statute miles.
func (c Clue) Miles() float64 { return KmToMiles(c.DistanceKm) }

// String renders the clue the way the page shows it, e.g. "1061.7 km NE ↗️".
func (c Clue) String() string {
	return fmt.Sprintf("%.1f km %s %s", c.RoundedKm(), c.Direction, c.Arrow)
}
