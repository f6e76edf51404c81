// Package datacache persists fetched subject records in a local SQLite
// database so that the analysis can be rerun without network access
// after a single fetch.
package datacache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mbounthavong/immortaltime/oscars"
)

// Store manages dataset persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database and applies the
// schema.
func Open(path string) (*Store, error) {

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {

	schema := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
            url        TEXT PRIMARY KEY,
            fetched_at TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS subjects (
            url         TEXT NOT NULL REFERENCES datasets(url) ON DELETE CASCADE,
            seq         INTEGER NOT NULL,
            id          TEXT NOT NULL,
            years       INTEGER NOT NULL,
            died        INTEGER NOT NULL,
            winner      INTEGER NOT NULL,
            nominations INTEGER NOT NULL,
            award_year  INTEGER NOT NULL,
            PRIMARY KEY (url, seq)
        )`,
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the database file.
func (s *Store) Path() string {
	return s.path
}

// Lookup returns the cached subject records for the given source URL.
// The second return value is false when the URL has not been cached.
func (s *Store) Lookup(ctx context.Context, url string) ([]oscars.Subject, bool, error) {

	var fetchedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM datasets WHERE url = ?`, url).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("lookup dataset: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, years, died, winner, nominations, award_year
           FROM subjects WHERE url = ? ORDER BY seq`, url)
	if err != nil {
		return nil, false, fmt.Errorf("load subjects: %w", err)
	}
	defer rows.Close()

	var subjects []oscars.Subject
	for rows.Next() {
		var sub oscars.Subject
		var died, winner int
		if err := rows.Scan(&sub.ID, &sub.Years, &died, &winner, &sub.Nominations, &sub.AwardYear); err != nil {
			return nil, false, fmt.Errorf("scan subject: %w", err)
		}
		sub.Died = died == 1
		sub.Winner = winner == 1
		subjects = append(subjects, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("load subjects: %w", err)
	}

	return subjects, true, nil
}

// Store replaces the cached records for the given source URL.
func (s *Store) Store(ctx context.Context, url string, subjects []oscars.Subject) error {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE url = ?`, url); err != nil {
		return fmt.Errorf("clear dataset: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (url, fetched_at) VALUES (?, ?)`, url, now); err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}

	b2i := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}

	for seq, sub := range subjects {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO subjects (url, seq, id, years, died, winner, nominations, award_year)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			url, seq, sub.ID, sub.Years, b2i(sub.Died), b2i(sub.Winner), sub.Nominations, sub.AwardYear)
		if err != nil {
			return fmt.Errorf("insert subject %s: %w", sub.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
