package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"squadload/internal/analysis"
)

// ErrRecordNotFound is returned when no record has the requested identity
var ErrRecordNotFound = errors.New("record not found")

// ErrDuplicateIdentity is returned by InsertRecord when the (athlete, day,
// shift) identity already exists. It matches analysis.ErrDuplicateIdentity.
var ErrDuplicateIdentity = analysis.ErrDuplicateIdentity

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Store is the sqlite-backed record table
type Store struct {
	db *sqlx.DB
}

// Open opens the SQLite database, creating it if necessary.
// The database is stored at ~/.squadload/data.db
func Open() (*Store, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("getting db path: %w", err)
	}
	return OpenPath(dbPath)
}

// OpenPath opens the database at path. MemoryPath gives a throwaway store.
func OpenPath(path string) (*Store, error) {
	if path != MemoryPath {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// sqlite has a single writer, and every :memory: connection is its own database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// getDBPath returns the path to the SQLite database file
func getDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".squadload", "data.db"), nil
}
