package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite
)

// Store is the persistence engine instance. It is opened once at process
// start, closed on shutdown, and passed explicitly to every consumer. Safe
// for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (and if necessary bootstraps) the database at path.
func Open(path string) (*Store, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS credentials(
	  yid      INTEGER PRIMARY KEY,
	  username TEXT NOT NULL,
	  password TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS class(
	  gid         TEXT PRIMARY KEY,
	  area        TEXT NOT NULL,
	  last_update INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS substitution(
	  gid         TEXT NOT NULL REFERENCES class(gid),
	  day         INTEGER NOT NULL,
	  lesson      INTEGER NOT NULL,
	  teacher     TEXT NOT NULL DEFAULT '',
	  subject     TEXT NOT NULL DEFAULT '',
	  room        TEXT NOT NULL DEFAULT '',
	  notes       TEXT NOT NULL DEFAULT '',
	  last_update INTEGER NOT NULL DEFAULT 0,
	  PRIMARY KEY (gid, day, lesson)
	);
	CREATE TABLE IF NOT EXISTS user(
	  uid         INTEGER NOT NULL,
	  platform    TEXT NOT NULL,
	  gid         TEXT,
	  trusted     INTEGER NOT NULL DEFAULT 0,
	  last_update INTEGER NOT NULL DEFAULT 0,
	  PRIMARY KEY (uid, platform)
	);
	CREATE INDEX IF NOT EXISTS idx_substitution_day ON substitution(day);
	`)
	if err != nil {
		return fmt.Errorf("creating database tables: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
