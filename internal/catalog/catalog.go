package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Placement is one recorded placement decision.
type Placement struct {
	ID         int64
	RunID      string
	SourcePath string
	DestPath   string
	// Source names the timestamp tier that won: sidecar, exif, or filetime.
	Source     string
	ResolvedAt time.Time
	Status     Status
	Error      string
	CreatedAt  time.Time
}

// Status classifies the outcome of a placement attempt.
type Status string

const (
	StatusPlaced Status = "placed"
	StatusFailed Status = "failed"
)

const schema = `
CREATE TABLE IF NOT EXISTS placements (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    source_path TEXT NOT NULL,
    dest_path TEXT,
    ts_source TEXT NOT NULL,
    resolved_at TEXT NOT NULL,
    status TEXT NOT NULL,
    error TEXT,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_placements_run ON placements(run_id);
`

// Store persists placement records in SQLite. It is append-only during a
// run; nothing in the organize pipeline reads it back.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends one placement decision. Safe for concurrent use; workers
// from the placement pool call it directly.
func (s *Store) Record(ctx context.Context, p Placement) error {
	if s == nil {
		return nil
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO placements (
            run_id, source_path, dest_path, ts_source, resolved_at, status, error, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.RunID,
		p.SourcePath,
		nullableString(p.DestPath),
		p.Source,
		p.ResolvedAt.UTC().Format(time.RFC3339),
		string(p.Status),
		nullableString(p.Error),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert placement: %w", err)
	}
	return nil
}

// ListRun returns every record of one run ordered by insertion.
func (s *Store) ListRun(ctx context.Context, runID string) ([]Placement, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, source_path, dest_path, ts_source, resolved_at, status, error, created_at
         FROM placements WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	var out []Placement
	for rows.Next() {
		var (
			p          Placement
			dest       sql.NullString
			errText    sql.NullString
			resolvedAt string
			createdAt  string
		)
		if err := rows.Scan(&p.ID, &p.RunID, &p.SourcePath, &dest, &p.Source, &resolvedAt, &p.Status, &errText, &createdAt); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		p.DestPath = dest.String
		p.Error = errText.String
		if ts, err := time.Parse(time.RFC3339, resolvedAt); err == nil {
			p.ResolvedAt = ts
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			p.CreatedAt = ts
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
