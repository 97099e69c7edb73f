// internal/catalog/catalog.go
//
// Park catalog sources and the cached catalog handed to the game.
//
// Providers:
//   - NPSClient: live data from the National Park Service REST API.
//   - SeedProvider: an embedded (or file-based) JSON catalog for offline play.
//
// Cache wraps a Provider with a single-slot TTL and falls back to a
// snapshot store when the provider is unreachable.

package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/npsguess/internal/park"
)

// ErrUnavailable is returned when no catalog could be produced from any source.
var ErrUnavailable = errors.New("park catalog unavailable")

// Source names reported in Catalog.Source.
const (
	SourceNPS      = "nps"
	SourceSeed     = "seed"
	SourceSnapshot = "snapshot"
)

// Provider fetches the full park list from some upstream.
type Provider interface {
	FetchParks(ctx context.Context) ([]park.Park, error)
	Name() string
}

// Catalog is an immutable set of parks plus where and when it was obtained.
// Parks must not be modified after the Catalog is published.
type Catalog struct {
	Parks     []park.Park
	FetchedAt time.Time
	Source    string
}

// Empty reports whether the catalog holds no parks.
func (c Catalog) Empty() bool { return len(c.Parks) == 0 }

// Playable counts the parks that can be used as a puzzle.
func (c Catalog) Playable() int { return len(park.Playable(c.Parks)) }
