// Package history provides a SQLite-backed log of completion events and
// token credits. It is a queryable side record, never the source of
// truth; the vault documents remain authoritative.
package history

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS completions (
	id         TEXT PRIMARY KEY,
	habit      TEXT NOT NULL,
	date       TEXT NOT NULL,
	tokens     INTEGER NOT NULL,
	streak     INTEGER NOT NULL,
	recovered  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_completions_habit ON completions(habit);
CREATE INDEX IF NOT EXISTS idx_completions_date ON completions(date);
`

// Recorder defines the operations the coordinator and API need.
// Consumers depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Recorder interface {
	RecordCompletion(c Completion) error
	RecentCompletions(limit int) ([]Completion, error)
	HabitTotals(habit string) (Totals, error)
	Close() error
}

// Verify *DB satisfies Recorder at compile time.
var _ Recorder = (*DB)(nil)

// DB wraps a sql.DB with history-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
