package storage

import (
	"time"

	"github.com/google/uuid"
)

// BaseRepository carries the database handle shared by all repositories.
type BaseRepository struct {
	db *DB
}

// NewBaseRepository creates a base repository over the given connection.
func NewBaseRepository(db *DB) BaseRepository {
	return BaseRepository{db: db}
}

// DB returns the underlying database connection.
func (r *BaseRepository) DB() *DB {
	return r.db
}

// Now returns the current time in UTC. All stored timestamps are UTC.
func (r *BaseRepository) Now() time.Time {
	return time.Now().UTC()
}

// GenerateID creates a new UUID for use as a primary key.
func GenerateID() string {
	return uuid.NewString()
}
