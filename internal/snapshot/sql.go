package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/npsguess/internal/geo"
	"github.com/robalobadob/npsguess/internal/obs"
	"github.com/robalobadob/npsguess/internal/park"
)

type dialect struct {
	name        string
	placeholder func(n int) string // 1-based
}

// bind rewrites ? placeholders into the dialect's form.
func (d dialect) bind(q string) string {
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString(d.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// migration is one named schema step, applied at most once.
type migration struct {
	name  string
	stmts []string
}

var migrations = []migration{
	{
		name: "001_catalog_snapshot",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS catalog_meta (
				id         INTEGER PRIMARY KEY,
				fetched_at TEXT    NOT NULL,
				park_count INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS catalog_parks (
				position      INTEGER PRIMARY KEY,
				code          TEXT NOT NULL,
				name          TEXT NOT NULL,
				city          TEXT NOT NULL,
				state         TEXT NOT NULL,
				state_name    TEXT NOT NULL,
				lat           DOUBLE PRECISION,
				lon           DOUBLE PRECISION,
				image_url     TEXT NOT NULL,
				image_alt     TEXT NOT NULL,
				image_caption TEXT NOT NULL,
				description   TEXT NOT NULL,
				url           TEXT NOT NULL
			)`,
		},
	},
}

type sqlStore struct {
	db *sql.DB
	d  dialect
}

// migrate applies pending migrations, recording each in _migrations.
func (s *sqlStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	for _, m := range migrations {
		var done int
		err := s.db.QueryRowContext(ctx, s.d.bind(`SELECT 1 FROM _migrations WHERE name = ?`), m.name).Scan(&done)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("apply %s: begin: %w", m.name, err)
		}
		for _, stmt := range m.stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("apply %s: %w", m.name, err)
			}
		}
		if _, err := tx.ExecContext(ctx, s.d.bind(`INSERT INTO _migrations (name) VALUES (?)`), m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", m.name, err)
		}
		log.Info().Str("dialect", s.d.name).Str("migration", m.name).Msg("applied")
	}
	return nil
}

// Save replaces the stored snapshot in a single transaction.
func (s *sqlStore) Save(ctx context.Context, parks []park.Park, fetchedAt time.Time) (err error) {
	defer obs.Time(ctx, "snapshot.Save")(&err)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save snapshot: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_parks`); err != nil {
		return fmt.Errorf("save snapshot: clear parks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_meta`); err != nil {
		return fmt.Errorf("save snapshot: clear meta: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.d.bind(`
		INSERT INTO catalog_parks
			(position, code, name, city, state, state_name, lat, lon,
			 image_url, image_alt, image_caption, description, url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("save snapshot: prepare: %w", err)
	}
	defer stmt.Close()

	for i, p := range parks {
		var lat, lon sql.NullFloat64
		if p.Location != nil {
			lat = sql.NullFloat64{Float64: p.Location.Lat, Valid: true}
			lon = sql.NullFloat64{Float64: p.Location.Lon, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			i, p.Code, p.Name, p.City, p.State, p.StateName, lat, lon,
			p.ImageURL, p.ImageAlt, p.ImageCaption, p.Description, p.URL,
		); err != nil {
			return fmt.Errorf("save snapshot park=%q: %w", p.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		s.d.bind(`INSERT INTO catalog_meta (id, fetched_at, park_count) VALUES (1, ?, ?)`),
		fetchedAt.UTC().Format(time.RFC3339Nano), len(parks),
	); err != nil {
		return fmt.Errorf("save snapshot: meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save snapshot: commit: %w", err)
	}
	return nil
}

// Load returns the stored parks in their original order, or ErrEmpty.
func (s *sqlStore) Load(ctx context.Context) (_ []park.Park, _ time.Time, err error) {
	defer obs.Time(ctx, "snapshot.Load")(&err)

	var (
		fetched string
		count   int
	)
	err = s.db.QueryRowContext(ctx, `SELECT fetched_at, park_count FROM catalog_meta WHERE id = 1`).Scan(&fetched, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrEmpty
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load snapshot meta: %w", err)
	}
	at, err := time.Parse(time.RFC3339Nano, fetched)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load snapshot meta: fetched_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, city, state, state_name, lat, lon,
		       image_url, image_alt, image_caption, description, url
		FROM catalog_parks
		ORDER BY position`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load snapshot parks: %w", err)
	}
	defer rows.Close()

	out := make([]park.Park, 0, count)
	for rows.Next() {
		var (
			p        park.Park
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&p.Code, &p.Name, &p.City, &p.State, &p.StateName, &lat, &lon,
			&p.ImageURL, &p.ImageAlt, &p.ImageCaption, &p.Description, &p.URL); err != nil {
			return nil, time.Time{}, fmt.Errorf("load snapshot parks: scan: %w", err)
		}
		if lat.Valid && lon.Valid {
			p.Location = &geo.Point{Lat: lat.Float64, Lon: lon.Float64}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("load snapshot parks: rows: %w", err)
	}
	if len(out) == 0 {
		return nil, time.Time{}, ErrEmpty
	}
	return out, at, nil
}

func (s *sqlStore) Close() error { return s.db.Close() }
