// Package archive persists run outcomes in SQLite so archived reports
// can be listed, inspected, and re-decoded offline, without a live
// Engine. The full report text is stored verbatim: the decoder is pure
// over report text, so every future decoder improvement applies
// retroactively to archived runs.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"nastrun/internal/logging"
)

// RunRecord is one archived run. Report and Log are only populated by
// Get; List returns the summary columns.
type RunRecord struct {
	ID        int64         `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Deck      string        `json:"deck"`
	Strategy  string        `json:"strategy"`
	ExitCode  int           `json:"exit_code"`
	Completed bool          `json:"completed"`
	TimedOut  bool          `json:"timed_out"`
	WallTime  time.Duration `json:"wall_time"`
	Report    string        `json:"report,omitempty"`
	Log       string        `json:"log,omitempty"`
}

// Store is the SQLite-backed run archive.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes the archive database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryArchive, "archive open")
	defer timer.Stop()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.ArchiveDebug("Failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.ArchiveDebug("Failed to set journal_mode=WAL: %v", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Archive("Archive open at %s", path)
	return s, nil
}

func (s *Store) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deck         TEXT NOT NULL,
		strategy     TEXT NOT NULL,
		exit_code    INTEGER NOT NULL,
		completed    INTEGER NOT NULL,
		timed_out    INTEGER NOT NULL,
		wall_time_ms INTEGER NOT NULL,
		report       TEXT NOT NULL,
		log          TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_deck ON runs(deck);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate archive schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save archives one run and returns its id.
func (s *Store) Save(rec RunRecord) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO runs (deck, strategy, exit_code, completed, timed_out, wall_time_ms, report, log)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Deck, rec.Strategy, rec.ExitCode, rec.Completed, rec.TimedOut,
		rec.WallTime.Milliseconds(), rec.Report, rec.Log)
	if err != nil {
		return 0, fmt.Errorf("failed to archive run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read archived run id: %w", err)
	}
	logging.Archive("Archived run %d (deck=%s exit=%d completed=%v)",
		id, rec.Deck, rec.ExitCode, rec.Completed)
	return id, nil
}

// List returns run summaries, newest first. limit <= 0 means all.
func (s *Store) List(limit int) ([]RunRecord, error) {
	query := `
		SELECT id, created_at, deck, strategy, exit_code, completed, timed_out, wall_time_ms
		FROM runs ORDER BY id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var wallMs int64
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.Deck, &rec.Strategy,
			&rec.ExitCode, &rec.Completed, &rec.TimedOut, &wallMs); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		rec.WallTime = time.Duration(wallMs) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns one archived run, including the full report and log text.
func (s *Store) Get(id int64) (*RunRecord, error) {
	var rec RunRecord
	var wallMs int64
	err := s.db.QueryRow(`
		SELECT id, created_at, deck, strategy, exit_code, completed, timed_out, wall_time_ms, report, log
		FROM runs WHERE id = ?`, id).
		Scan(&rec.ID, &rec.CreatedAt, &rec.Deck, &rec.Strategy,
			&rec.ExitCode, &rec.Completed, &rec.TimedOut, &wallMs, &rec.Report, &rec.Log)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found in archive", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", id, err)
	}
	rec.WallTime = time.Duration(wallMs) * time.Millisecond
	return &rec, nil
}
