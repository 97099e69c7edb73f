package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/npsguess/internal/game"
)

func TestMemoryStoreSaveGet(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	s := Session{ID: "a", Game: game.State{Score: 2, History: []game.Attempt{{Guess: "zion"}}}}
	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := st.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Game.Score != 2 || len(got.Game.History) != 1 {
		t.Errorf("got %+v", got)
	}

	if err := st.Save(ctx, Session{}); err == nil {
		t.Error("empty id should be rejected")
	}
}

func TestMemoryStoreSessionsAreIsolated(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_ = st.Save(ctx, Session{ID: "a", Game: game.State{Score: 1}})
	_ = st.Save(ctx, Session{ID: "b", Game: game.State{Score: 5}})

	a, _ := st.Get(ctx, "a")
	a.Game.Score = 99
	b, _ := st.Get(ctx, "b")
	again, _ := st.Get(ctx, "a")

	if b.Game.Score != 5 || again.Game.Score != 1 {
		t.Errorf("sessions leaked: a=%d b=%d", again.Game.Score, b.Game.Score)
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	_ = st.Save(ctx, Session{ID: "old", UpdatedAt: now.Add(-48 * time.Hour)})
	_ = st.Save(ctx, Session{ID: "new", UpdatedAt: now})

	if n := st.Sweep(ctx, now.Add(-24*time.Hour)); n != 1 {
		t.Errorf("swept %d, want 1", n)
	}
	if _, err := st.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Error("old session should be gone")
	}
	if _, err := st.Get(ctx, "new"); err != nil {
		t.Error("new session should remain")
	}
}
