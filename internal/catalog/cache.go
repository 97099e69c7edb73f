package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/npsguess/internal/park"
)

// DefaultTTL is how long a fetched catalog is served before refreshing.
const DefaultTTL = time.Hour

// Snapshots persists the last good catalog so a restart without upstream
// access still has something to play with. snapshot.Store satisfies it.
type Snapshots interface {
	Save(ctx context.Context, parks []park.Park, fetchedAt time.Time) error
	Load(ctx context.Context) ([]park.Park, time.Time, error)
}

// Cache is a single-slot, TTL-bound cache in front of a Provider.
//
// Lookup order on GetOrRefresh:
//  1. cached catalog younger than TTL
//  2. fresh fetch from the provider (written through to snapshots)
//  3. stale cached catalog, if the fetch failed
//  4. snapshot store
//
// Refreshes are serialized, so at most one upstream fetch runs at a time.
// Peek never waits on a fetch.
type Cache struct {
	provider  Provider
	snapshots Snapshots // optional
	ttl       time.Duration

	refreshMu sync.Mutex // held for the whole refresh

	mu      sync.RWMutex // guards current only
	current *Catalog
}

// NewCache wraps p. A nil snapshots disables the fallback store.
func NewCache(p Provider, snapshots Snapshots, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{provider: p, snapshots: snapshots, ttl: ttl}
}

// GetOrRefresh returns a catalog valid at now, refreshing it when expired.
// Returns ErrUnavailable if every source failed.
func (c *Cache) GetOrRefresh(ctx context.Context, now time.Time) (Catalog, error) {
	if cat, ok := c.fresh(now); ok {
		return cat, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// another caller may have refreshed while we waited
	if cat, ok := c.fresh(now); ok {
		return cat, nil
	}

	parks, err := c.provider.FetchParks(ctx)
	if err == nil && len(parks) == 0 {
		err = errors.New("provider returned no parks")
	}
	if err == nil {
		cat := Catalog{Parks: parks, FetchedAt: now, Source: c.provider.Name()}
		c.set(&cat)
		c.saveSnapshot(ctx, cat)
		log.Info().Str("source", cat.Source).Int("parks", len(parks)).Msg("catalog refreshed")
		return cat, nil
	}

	if stale, ok := c.Peek(); ok {
		log.Warn().Err(err).Time("fetchedAt", stale.FetchedAt).Msg("catalog refresh failed, serving stale")
		return stale, nil
	}

	if cat, ok := c.loadSnapshot(ctx); ok {
		log.Warn().Err(err).Time("fetchedAt", cat.FetchedAt).Msg("catalog fetch failed, serving snapshot")
		// Stamped with now so a dead upstream is retried once per TTL, not per request.
		served := cat
		served.FetchedAt = now
		c.set(&served)
		return cat, nil
	}

	log.Error().Err(err).Msg("catalog unavailable")
	return Catalog{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Peek returns the cached catalog without refreshing it.
func (c *Cache) Peek() (Catalog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return Catalog{}, false
	}
	return *c.current, true
}

// Invalidate drops the cached catalog so the next call refetches.
func (c *Cache) Invalidate() { c.set(nil) }

func (c *Cache) fresh(now time.Time) (Catalog, bool) {
	cat, ok := c.Peek()
	if !ok || now.Sub(cat.FetchedAt) >= c.ttl {
		return Catalog{}, false
	}
	return cat, true
}

func (c *Cache) set(cat *Catalog) {
	c.mu.Lock()
	c.current = cat
	c.mu.Unlock()
}

func (c *Cache) saveSnapshot(ctx context.Context, cat Catalog) {
	if c.snapshots == nil {
		return
	}
	if err := c.snapshots.Save(ctx, cat.Parks, cat.FetchedAt); err != nil {
		log.Warn().Err(err).Msg("save catalog snapshot")
	}
}

func (c *Cache) loadSnapshot(ctx context.Context) (Catalog, bool) {
	if c.snapshots == nil {
		return Catalog{}, false
	}
	parks, at, err := c.snapshots.Load(ctx)
	if err != nil || len(parks) == 0 {
		if err != nil {
			log.Debug().Err(err).Msg("load catalog snapshot")
		}
		return Catalog{}, false
	}
	return Catalog{Parks: parks, FetchedAt: at, Source: SourceSnapshot}, true
}
