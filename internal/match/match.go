// internal/match/match.go
//
// Resolves a free-text guess to at most one park in the catalog.
//
// Tiers, first match wins:
//   1. exact name
//   2. name substring (guess inside name, or name inside guess)
//   3. city, exact or substring
//   4. state, postal code exact or full name exact/substring
//
// Within a tier the first park in catalog order wins, so "Glacier" picks
// whichever of "Glacier" and "Glacier Bay" the catalog lists first.

package match

import (
	"strings"

	"github.com/robalobadob/npsguess/internal/park"
)

const (
	// minGuessLen is the shortest normalized guess that can match anything.
	minGuessLen = 2
	// minPartLen is the shortest string allowed on the contained side of a substring match.
	minPartLen = 3
)

// genericWords never identify a park on their own.
var genericWords = map[string]struct{}{
	"national": {}, "park": {}, "parks": {}, "monument": {}, "memorial": {},
	"historic": {}, "historical": {}, "site": {}, "area": {}, "preserve": {},
	"reserve": {}, "recreation": {}, "seashore": {}, "lakeshore": {}, "river": {},
	"trail": {}, "scenic": {}, "byway": {}, "corridor": {}, "battlefield": {},
	"cemetery": {}, "cemeteries": {}, "military": {}, "state": {}, "of": {},
	"the": {}, "and": {},
}

// Normalize lowercases s, trims it, and collapses internal whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Resolve returns the park the guess refers to, or nil.
// The returned pointer refers into parks.
func Resolve(guess string, parks []park.Park) *park.Park {
	g := Normalize(guess)
	if len(g) < minGuessLen || onlyGeneric(g) {
		return nil
	}

	tiers := []func(p *park.Park) bool{
		func(p *park.Park) bool { return Normalize(p.Name) == g },
		func(p *park.Park) bool { return contains(Normalize(p.Name), g) },
		func(p *park.Park) bool { return fieldMatches(Normalize(p.City), g) },
		func(p *park.Park) bool { return stateMatches(p, g) },
	}
	for _, tier := range tiers {
		for i := range parks {
			if tier(&parks[i]) {
				return &parks[i]
			}
		}
	}
	return nil
}

// contains reports whether either string contains the other,
// ignoring containments where the inner string is too short to be meaningful.
func contains(field, g string) bool {
	if field == "" {
		return false
	}
	if len(g) >= minPartLen && strings.Contains(field, g) {
		return true
	}
	return len(field) >= minPartLen && strings.Contains(g, field)
}

func fieldMatches(field, g string) bool {
	return field != "" && (field == g || contains(field, g))
}

func stateMatches(p *park.Park, g string) bool {
	if p.State != "" && strings.EqualFold(p.State, g) {
		return true
	}
	return fieldMatches(Normalize(p.StateName), g)
}

func onlyGeneric(g string) bool {
	for _, w := range strings.Fields(g) {
		if _, ok := genericWords[w]; !ok {
			return false
		}
	}
	return true
}
