// Package storage provides the SQLite persistence layer: properties,
// bookings, cleaning jobs and the sync audit log.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// dsnOptions enables foreign keys, WAL journaling for concurrent reads
// during sync passes, and a busy timeout so reconciliation writes wait out
// short read locks instead of failing.
const dsnOptions = "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"

// DB wraps the SQLite connection.
type DB struct {
	*sql.DB
	path string
}

// NewDB opens (creating if necessary) the SQLite database at path.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// WAL allows readers alongside the single writer, so a small pool is
	// enough for the API while a sync pass is writing.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	return &DB{DB: db, path: path}, nil
}

// Path returns the filesystem path to the database file.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
