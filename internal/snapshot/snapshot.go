// internal/snapshot/snapshot.go
//
// Durable copy of the last park catalog fetched from upstream.
// Responsibilities:
//   - Open a SQLite file or a Postgres database, chosen by DSN.
//   - Apply the schema once (tracked in _migrations).
//   - Replace the stored catalog atomically and load it back in order.
//
// The snapshot only feeds the catalog cache when the NPS API is unreachable;
// game sessions are never written here.

package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/robalobadob/npsguess/internal/park"
)

// ErrEmpty is returned by Load when no snapshot has been saved yet.
var ErrEmpty = errors.New("snapshot: empty")

// Store saves and loads a catalog snapshot.
type Store interface {
	Save(ctx context.Context, parks []park.Park, fetchedAt time.Time) error
	Load(ctx context.Context) ([]park.Park, time.Time, error)
	Close() error
}

// Open returns a Store for dsn.
//
//	postgres://... or postgresql://...  → Postgres via pgx
//	anything else (optionally "sqlite:" prefixed) → SQLite file path
func Open(dsn string) (Store, error) {
	var (
		db  *sql.DB
		d   dialect
		err error
	)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		db, err = openPostgres(dsn)
		d = postgresDialect
	default:
		db, err = openSQLite(strings.TrimPrefix(dsn, "sqlite:"))
		d = sqliteDialect
	}
	if err != nil {
		return nil, err
	}

	s := &sqlStore{db: db, d: d}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
