package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/npsguess/internal/park"
)

// fakeProvider returns parks/err and counts calls.
type fakeProvider struct {
	parks []park.Park
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FetchParks(ctx context.Context) ([]park.Park, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.parks, nil
}

// memSnapshots is an in-memory Snapshots.
type memSnapshots struct {
	parks []park.Park
	at    time.Time
	saves int
}

func (m *memSnapshots) Save(ctx context.Context, parks []park.Park, at time.Time) error {
	m.parks, m.at = parks, at
	m.saves++
	return nil
}

func (m *memSnapshots) Load(ctx context.Context) ([]park.Park, time.Time, error) {
	if len(m.parks) == 0 {
		return nil, time.Time{}, errors.New("empty")
	}
	return m.parks, m.at, nil
}

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func someParks() []park.Park {
	return []park.Park{{Code: "yell", Name: "Yellowstone", ImageURL: "y.jpg"}}
}

func TestCacheFreshHitDoesNotRefetch(t *testing.T) {
	p := &fakeProvider{parks: someParks()}
	c := NewCache(p, nil, time.Hour)
	ctx := context.Background()

	cat, err := c.GetOrRefresh(ctx, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Source != "fake" || len(cat.Parks) != 1 || !cat.FetchedAt.Equal(t0) {
		t.Errorf("unexpected catalog: %+v", cat)
	}

	if _, err := c.GetOrRefresh(ctx, t0.Add(59*time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1", p.calls)
	}
}

func TestCacheExpiryRefetches(t *testing.T) {
	p := &fakeProvider{parks: someParks()}
	c := NewCache(p, nil, time.Hour)
	ctx := context.Background()

	_, _ = c.GetOrRefresh(ctx, t0)
	cat, err := c.GetOrRefresh(ctx, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 2 {
		t.Errorf("calls = %d, want 2", p.calls)
	}
	if !cat.FetchedAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("fetchedAt = %v", cat.FetchedAt)
	}
}

func TestCacheServesStaleOnFailure(t *testing.T) {
	p := &fakeProvider{parks: someParks()}
	c := NewCache(p, nil, time.Hour)
	ctx := context.Background()

	_, _ = c.GetOrRefresh(ctx, t0)
	p.err = errors.New("upstream down")

	cat, err := c.GetOrRefresh(ctx, t0.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("stale catalog should be served, got %v", err)
	}
	if !cat.FetchedAt.Equal(t0) || len(cat.Parks) != 1 {
		t.Errorf("unexpected catalog: %+v", cat)
	}
}

func TestCacheUnavailable(t *testing.T) {
	for name, p := range map[string]*fakeProvider{
		"error": {err: errors.New("boom")},
		"empty": {parks: nil},
	} {
		t.Run(name, func(t *testing.T) {
			c := NewCache(p, nil, time.Hour)
			_, err := c.GetOrRefresh(context.Background(), t0)
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("err = %v, want ErrUnavailable", err)
			}
			if _, ok := c.Peek(); ok {
				t.Error("nothing should be cached")
			}
		})
	}
}

func TestCacheSnapshotWriteThroughAndFallback(t *testing.T) {
	snaps := &memSnapshots{}
	ctx := context.Background()

	good := NewCache(&fakeProvider{parks: someParks()}, snaps, time.Hour)
	if _, err := good.GetOrRefresh(ctx, t0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snaps.saves != 1 || !snaps.at.Equal(t0) {
		t.Fatalf("snapshot not written: %+v", snaps)
	}

	down := &fakeProvider{err: errors.New("offline")}
	c := NewCache(down, snaps, time.Hour)
	cat, err := c.GetOrRefresh(ctx, t0.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("snapshot should be served, got %v", err)
	}
	if cat.Source != SourceSnapshot || !cat.FetchedAt.Equal(t0) || len(cat.Parks) != 1 {
		t.Errorf("unexpected catalog: %+v", cat)
	}

	// the snapshot is held for one TTL before the provider is tried again
	_, _ = c.GetOrRefresh(ctx, t0.Add(24*time.Hour+time.Minute))
	if down.calls != 1 {
		t.Errorf("calls = %d, want 1", down.calls)
	}
	_, _ = c.GetOrRefresh(ctx, t0.Add(25*time.Hour))
	if down.calls != 2 {
		t.Errorf("calls = %d, want 2", down.calls)
	}
}

func TestCacheInvalidate(t *testing.T) {
	p := &fakeProvider{parks: someParks()}
	c := NewCache(p, nil, time.Hour)
	ctx := context.Background()

	_, _ = c.GetOrRefresh(ctx, t0)
	c.Invalidate()
	_, _ = c.GetOrRefresh(ctx, t0.Add(time.Minute))
	if p.calls != 2 {
		t.Errorf("calls = %d, want 2", p.calls)
	}
}

// slowProvider blocks in FetchParks until release is closed, once started is set.
type slowProvider struct {
	parks   []park.Park
	started chan struct{}
	release chan struct{}
}

func (s *slowProvider) Name() string { return "slow" }

func (s *slowProvider) FetchParks(ctx context.Context) ([]park.Park, error) {
	if s.started != nil {
		close(s.started)
		<-s.release
	}
	return s.parks, nil
}

func TestCachePeekDoesNotWaitOnRefresh(t *testing.T) {
	p := &slowProvider{parks: someParks()}
	c := NewCache(p, nil, time.Hour)
	ctx := context.Background()

	if _, err := c.GetOrRefresh(ctx, t0); err != nil {
		t.Fatalf("prime: %v", err)
	}

	p.started = make(chan struct{})
	p.release = make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.GetOrRefresh(ctx, t0.Add(2*time.Hour))
	}()
	<-p.started

	peeked := make(chan Catalog, 1)
	go func() {
		cat, _ := c.Peek()
		peeked <- cat
	}()
	select {
	case cat := <-peeked:
		if !cat.FetchedAt.Equal(t0) {
			t.Errorf("Peek during refresh FetchedAt = %v, want %v", cat.FetchedAt, t0)
		}
	case <-time.After(2 * time.Second):
		t.Error("Peek blocked while a refresh was in flight")
	}

	close(p.release)
	<-done
	if cat, ok := c.Peek(); !ok || !cat.FetchedAt.Equal(t0.Add(2*time.Hour)) {
		t.Errorf("after refresh Peek = %v, %v", cat.FetchedAt, ok)
	}
}
