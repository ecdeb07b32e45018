// Package history persists city-time lookups in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup id does not exist.
var ErrNotFound = errors.New("lookup not found")

// Record is one city-time lookup, successful or not.
type Record struct {
	ID             string        `json:"id"`
	City           string        `json:"city"`
	Platform       string        `json:"platform"`
	CurrentTime    string        `json:"current_time,omitempty"`
	Timezone       string        `json:"timezone,omitempty"`
	AdditionalInfo string        `json:"additional_info,omitempty"`
	RawFallback    bool          `json:"raw_fallback"`
	Raw            string        `json:"raw,omitempty"`
	Error          string        `json:"error,omitempty"`
	Duration       time.Duration `json:"duration_ns"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Store reads and writes lookup records.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at path. An empty path opens a private
// in-memory database.
func Open(path string) (*Store, error) {
	dsn := fileDSN(path)
	if path == "" {
		dsn = fmt.Sprintf("file:history-%s?mode=memory&cache=shared", uuid.NewString())
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	s, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// fileDSN escapes path so '?' and '#' stay part of the file name instead of
// starting URI parameters.
func fileDSN(path string) string {
	return "file:" + (&url.URL{Path: path}).EscapedPath()
}

// NewStore wraps db and makes sure the schema exists.
func NewStore(db *sql.DB) (*Store, error) {
	if err := initDB(db); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	return &Store{db: db}, nil
}

func initDB(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS lookups (
		id TEXT PRIMARY KEY,
		city TEXT NOT NULL,
		platform TEXT NOT NULL,
		current_time_text TEXT DEFAULT '',
		timezone TEXT DEFAULT '',
		additional_info TEXT DEFAULT '',
		raw_fallback INTEGER DEFAULT 0,
		raw TEXT DEFAULT '',
		error TEXT DEFAULT '',
		duration_ns INTEGER DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_lookups_created ON lookups(created_at);
	CREATE INDEX IF NOT EXISTS idx_lookups_city ON lookups(city);
	`
	_, err := db.Exec(schema)
	return err
}

// Save inserts r, assigning an id and timestamp when missing.
func (s *Store) Save(ctx context.Context, r *Record) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO lookups (
			id, city, platform, current_time_text, timezone, additional_info,
			raw_fallback, raw, error, duration_ns, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.City, r.Platform, r.CurrentTime, r.Timezone, r.AdditionalInfo,
		r.RawFallback, r.Raw, r.Error, int64(r.Duration), r.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lookup: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, city, platform, current_time_text, timezone, additional_info,
	       raw_fallback, raw, error, duration_ns, created_at
	FROM lookups
`

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookups: %w", err)
	}
	return scanRecords(rows)
}

// ForCity returns up to limit records for city (case-insensitive), newest first.
func (s *Store) ForCity(ctx context.Context, city string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE lower(city) = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		strings.ToLower(strings.TrimSpace(city)), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookups: %w", err)
	}
	return scanRecords(rows)
}

// Get returns the record with id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookup: %w", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: id=%s", ErrNotFound, id)
	}
	return &records[0], nil
}

// Count returns the total number of stored lookups.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lookups`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count lookups: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var durationNs, createdMs int64
		err := rows.Scan(
			&r.ID, &r.City, &r.Platform, &r.CurrentTime, &r.Timezone, &r.AdditionalInfo,
			&r.RawFallback, &r.Raw, &r.Error, &durationNs, &createdMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lookup: %w", err)
		}
		r.Duration = time.Duration(durationNs)
		r.CreatedAt = time.UnixMilli(createdMs)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lookups: %w", err)
	}
	return records, nil
}
