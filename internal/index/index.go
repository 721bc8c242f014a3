// Package index provides a SQLite-backed index of the vault's
// periodic notes, keyed by path and queryable by granularity and date.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/jera/internal/granularity"
	"github.com/starford/jera/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS periodic_notes (
	path        TEXT PRIMARY KEY,
	granularity TEXT NOT NULL,
	date        TEXT NOT NULL,
	checksum    TEXT NOT NULL DEFAULT '',
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_periodic_granularity_date
	ON periodic_notes(granularity, date);
`

// PeriodicIndex defines the interface for periodic-note index
// operations. Consumers should depend on this interface rather than
// the concrete *DB type to facilitate testing with mocks.
type PeriodicIndex interface {
	Upsert(n models.PeriodicNote) error
	Delete(path string) error
	Get(path string) (*models.PeriodicNote, error)
	ListByGranularity(g granularity.Granularity, limit, offset int) ([]models.PeriodicNote, int, error)
	FindByDate(g granularity.Granularity, date string) (string, bool, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies PeriodicIndex at compile time.
var _ PeriodicIndex = (*DB)(nil)

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
