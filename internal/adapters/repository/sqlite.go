package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/dkp/internal/domain/profile"
	_ "modernc.org/sqlite"
)

const (
	defaultBusyTimeout  = 5 * time.Second
	defaultMaxOpenConns = 1
	dirPermission       = 0o755
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	name      TEXT PRIMARY KEY,
	id        TEXT NOT NULL,
	saved_at  INTEGER NOT NULL,
	entities  INTEGER NOT NULL,
	start_raw BLOB NOT NULL,
	start_len INTEGER NOT NULL,
	end_raw   BLOB NOT NULL,
	end_len   INTEGER NOT NULL,
	payload   BLOB NOT NULL
);`

// SQLiteStore persists profiles in a single SQLite file. Raw exports are
// LZ4-compressed; settings and scored entities are msgpack-encoded.
type SQLiteStore struct {
	path         string
	db           *sql.DB
	busyTimeout  time.Duration
	maxOpenConns int
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve profile db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), dirPermission); err != nil {
		return nil, fmt.Errorf("ensure profile db dir: %w", err)
	}

	s := &SQLiteStore{
		path:         absPath,
		busyTimeout:  defaultBusyTimeout,
		maxOpenConns: defaultMaxOpenConns,
	}
	for _, opt := range opts {
		opt(s)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", absPath, s.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open profile db: %w", err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	s.db = db

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure profile schema: %w", err)
	}
	return s, nil
}

// Path returns the absolute database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Save(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	body, err := encodePayload(p)
	if err != nil {
		return profile.Profile{}, err
	}

	row := s.db.QueryRowContext(ctx, `
INSERT INTO profiles (name, id, saved_at, entities, start_raw, start_len, end_raw, end_len, payload)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	saved_at  = excluded.saved_at,
	entities  = excluded.entities,
	start_raw = excluded.start_raw,
	start_len = excluded.start_len,
	end_raw   = excluded.end_raw,
	end_len   = excluded.end_len,
	payload   = excluded.payload
RETURNING id`,
		p.Name, p.ID, p.SavedAt.UnixNano(), len(p.Entities),
		compressRaw(p.StartRaw), len(p.StartRaw),
		compressRaw(p.EndRaw), len(p.EndRaw),
		body,
	)
	if err := row.Scan(&p.ID); err != nil {
		return profile.Profile{}, fmt.Errorf("save profile %q: %w", p.Name, err)
	}
	return p, nil
}

func (s *SQLiteStore) Get(ctx context.Context, name string) (profile.Profile, error) {
	var (
		p                profile.Profile
		savedAt          int64
		startRaw, endRaw []byte
		startLen, endLen int
		body             []byte
	)
	err := s.db.QueryRowContext(ctx, `
SELECT name, id, saved_at, start_raw, start_len, end_raw, end_len, payload
FROM profiles WHERE name = ?`, name).
		Scan(&p.Name, &p.ID, &savedAt, &startRaw, &startLen, &endRaw, &endLen, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return profile.Profile{}, ErrNotFound
	}
	if err != nil {
		return profile.Profile{}, fmt.Errorf("get profile %q: %w", name, err)
	}

	p.SavedAt = time.Unix(0, savedAt).UTC()
	if p.StartRaw, err = decompressRaw(startRaw, startLen); err != nil {
		return profile.Profile{}, err
	}
	if p.EndRaw, err = decompressRaw(endRaw, endLen); err != nil {
		return profile.Profile{}, err
	}
	if err := decodePayload(body, &p); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]profile.Info, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, entities, saved_at FROM profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []profile.Info
	for rows.Next() {
		var (
			info    profile.Info
			savedAt int64
		)
		if err := rows.Scan(&info.ID, &info.Name, &info.Entities, &savedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		info.SavedAt = time.Unix(0, savedAt).UTC()
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	if out == nil {
		out = []profile.Info{}
	}
	return out, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete profile %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile %q: %w", name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored profiles, or zero if the query fails.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
