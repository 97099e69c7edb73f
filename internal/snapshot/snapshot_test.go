package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/npsguess/internal/geo"
	"github.com/robalobadob/npsguess/internal/park"
)

func sampleParks() []park.Park {
	return []park.Park{
		{
			Code: "yell", Name: "Yellowstone National Park", City: "Yellowstone National Park",
			State: "WY", StateName: "Wyoming", Location: &geo.Point{Lat: 44.6, Lon: -110.5},
			ImageURL: "https://x/yell.jpg", ImageAlt: "geyser", ImageCaption: "Old Faithful",
			Description: "Geysers.", URL: "https://www.nps.gov/yell/index.htm",
		},
		{Code: "blri", Name: "Blue Ridge Parkway", State: "NC", StateName: "North Carolina", ImageURL: "https://x/blri.jpg"},
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, _, err := s.Load(ctx); !errors.Is(err, ErrEmpty) {
		t.Fatalf("Load on empty store: err = %v, want ErrEmpty", err)
	}

	at := time.Date(2024, 6, 1, 12, 30, 0, 123, time.UTC)
	if err := s.Save(ctx, sampleParks(), at); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, gotAt, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !gotAt.Equal(at) {
		t.Errorf("fetchedAt = %v, want %v", gotAt, at)
	}
	want := sampleParks()
	if len(got) != len(want) {
		t.Fatalf("got %d parks, want %d", len(got), len(want))
	}
	if got[0].Location == nil || *got[0].Location != *want[0].Location {
		t.Errorf("location = %+v", got[0].Location)
	}
	got[0].Location, want[0].Location = nil, nil
	if got[0] != want[0] {
		t.Errorf("park 0 = %+v\nwant %+v", got[0], want[0])
	}
	if got[1].Code != "blri" || got[1].Location != nil {
		t.Errorf("park 1 = %+v", got[1])
	}

	// saving again replaces rather than appends
	if err := s.Save(ctx, sampleParks()[:1], at.Add(time.Hour)); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, gotAt, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || !gotAt.Equal(at.Add(time.Hour)) {
		t.Errorf("after replace: %d parks at %v", len(got), gotAt)
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "snapshot.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteReopenKeepsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	ctx := context.Background()

	s, err := Open("sqlite:" + path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Save(ctx, sampleParks(), time.Now()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, _, err := s.Load(ctx)
	if err != nil || len(got) != 2 {
		t.Fatalf("Load after reopen: %d parks, err %v", len(got), err)
	}
}

// Set SNAPSHOT_TEST_POSTGRES_DSN to run against a disposable Postgres database.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("SNAPSHOT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SNAPSHOT_TEST_POSTGRES_DSN not set")
	}
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ss := s.(*sqlStore)
	for _, tbl := range []string{"catalog_parks", "catalog_meta"} {
		if _, err := ss.db.Exec(`DELETE FROM ` + tbl); err != nil {
			t.Fatalf("reset %s: %v", tbl, err)
		}
	}
	exerciseStore(t, s)
}

func TestDialectBind(t *testing.T) {
	q := `INSERT INTO t (a, b) VALUES (?, ?)`
	if got := postgresDialect.bind(q); got != `INSERT INTO t (a, b) VALUES ($1, $2)` {
		t.Errorf("postgres bind = %q", got)
	}
	if got := sqliteDialect.bind(q); got != q {
		t.Errorf("sqlite bind = %q", got)
	}
}
