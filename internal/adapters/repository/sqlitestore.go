package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okian/studybuddy/internal/domain/model"
	"github.com/okian/studybuddy/pkg/metrics"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a Store backed by a SQLite database file.
// Classes and interests are stored as JSON text columns.
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

// NewSQLiteStore opens (and migrates) the database at path.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if path == "" {
		return nil, errors.New("sqlite path must not be empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	s := &SQLiteStore{db: db, opts: o}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	s.reportCount(ctx)
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS profiles (
	  id TEXT PRIMARY KEY,
	  firstname TEXT NOT NULL DEFAULT '',
	  lastname TEXT NOT NULL DEFAULT '',
	  email TEXT NOT NULL DEFAULT '',
	  dept TEXT NOT NULL DEFAULT '',
	  current_year TEXT NOT NULL DEFAULT '',
	  classes TEXT,
	  interests TEXT,
	  mentor INTEGER NOT NULL DEFAULT 0
	);
	`)
	return err
}

const profileColumns = `id, firstname, lastname, email, dept, current_year, classes, interests, mentor`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(r rowScanner) (*model.Profile, error) {
	var p model.Profile
	if err := r.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Department, &p.CurrentYear, &p.Classes, &p.Interests, &p.Mentor); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns the profile with id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Profile, error) {
	defer s.observe("get", time.Now())
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, s.fail("get", err)
	}
	return p, nil
}

// Create inserts p. A conflicting id leaves the row untouched and returns ErrExists.
func (s *SQLiteStore) Create(ctx context.Context, p *model.Profile) error {
	defer s.observe("create", time.Now())
	if err := p.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO profiles(`+profileColumns+`) VALUES(?,?,?,?,?,?,?,?,?)
	ON CONFLICT(id) DO NOTHING`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Department, p.CurrentYear, p.Classes, p.Interests, p.Mentor)
	if err != nil {
		return s.fail("create", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.fail("create", err)
	}
	if n == 0 {
		return ErrExists
	}
	s.reportCount(ctx)
	return nil
}

// Put inserts or replaces a profile. Replacing keeps the original row order.
func (s *SQLiteStore) Put(ctx context.Context, p *model.Profile) error {
	defer s.observe("put", time.Now())
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO profiles(`+profileColumns+`) VALUES(?,?,?,?,?,?,?,?,?)
	ON CONFLICT(id) DO UPDATE SET
	  firstname=excluded.firstname,
	  lastname=excluded.lastname,
	  email=excluded.email,
	  dept=excluded.dept,
	  current_year=excluded.current_year,
	  classes=excluded.classes,
	  interests=excluded.interests,
	  mentor=excluded.mentor`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Department, p.CurrentYear, p.Classes, p.Interests, p.Mentor)
	if err != nil {
		return s.fail("put", err)
	}
	s.reportCount(ctx)
	return nil
}

// Delete removes a profile.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	defer s.observe("delete", time.Now())
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return s.fail("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.fail("delete", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.reportCount(ctx)
	return nil
}

// ListExcept returns every profile other than id ordered by insertion.
func (s *SQLiteStore) ListExcept(ctx context.Context, id string) ([]*model.Profile, error) {
	defer s.observe("list", time.Now())
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id <> ? ORDER BY rowid`, id)
	if err != nil {
		return nil, s.fail("list", err)
	}
	defer rows.Close()

	var out []*model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, s.fail("list", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list", err)
	}
	return out, nil
}

// Count returns the number of stored profiles, or 0 on error.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) fail(op string, err error) error {
	if s.opts.metrics {
		metrics.RecordStoreError(DriverSQLite, op)
	}
	return fmt.Errorf("sqlite %s: %w", op, err)
}

func (s *SQLiteStore) reportCount(ctx context.Context) {
	if s.opts.metrics {
		metrics.UpdateProfilesTotal(s.Count(ctx))
	}
}

func (s *SQLiteStore) observe(op string, start time.Time) {
	if s.opts.metrics {
		metrics.RecordStoreQueryLatency(DriverSQLite, op, float64(time.Since(start).Microseconds())/1000)
	}
}
