package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const (
	DefaultLimit = 20
	MaxLimit     = 200
)

// SQLiteStore keeps run history in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// runs table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// SQLite allows one writer; a single connection serializes concurrent runs
	// instead of failing them with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting sqlite busy timeout: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS runs (
		run_id          TEXT PRIMARY KEY,
		created_at      INTEGER NOT NULL,
		candidate       TEXT NOT NULL DEFAULT '',
		profile         TEXT NOT NULL DEFAULT '',
		job_description TEXT NOT NULL DEFAULT '',
		success         INTEGER NOT NULL,
		match_score     INTEGER NOT NULL,
		match_analysis  TEXT NOT NULL DEFAULT '',
		message         TEXT NOT NULL DEFAULT '',
		termination     TEXT NOT NULL DEFAULT '',
		iterations      INTEGER NOT NULL DEFAULT 0,
		error           TEXT NOT NULL DEFAULT ''
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating runs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Record stores entry, replacing an earlier entry with the same run id.
func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO runs
		(run_id, created_at, candidate, profile, job_description, success, match_score,
		 match_analysis, message, termination, iterations, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.CreatedAt.UnixNano(), e.Candidate, e.Profile, e.JobDescription, e.Success, e.MatchScore,
		e.MatchAnalysis, e.Message, e.Termination, e.Iterations, e.Error,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", e.RunID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	rows, err := s.db.QueryContext(ctx, `SELECT run_id, created_at, candidate, profile, job_description,
		success, match_score, match_analysis, message, termination, iterations, error
		FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created int64
		)
		if err := rows.Scan(&e.RunID, &created, &e.Candidate, &e.Profile, &e.JobDescription,
			&e.Success, &e.MatchScore, &e.MatchAnalysis, &e.Message, &e.Termination, &e.Iterations, &e.Error); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		e.CreatedAt = time.Unix(0, created)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	return entries, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
