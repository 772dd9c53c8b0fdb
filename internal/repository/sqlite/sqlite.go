// Package sqlite implements the repository interfaces on SQLite.
//
// modernc.org/sqlite is a pure Go translation of SQLite: no CGo, no C
// toolchain, works everywhere Go works. The blank import below registers
// the driver with database/sql under the name "sqlite".
//
// Nullable timestamps (deactivated_at, github_created_at,
// github_profile_synced_at) are stored as epoch milliseconds in INTEGER
// columns: NULL means "never happened", and the conversion to time.Time
// happens at the scan boundary so the rest of the app never sees raw
// millisecond values.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New creates a SQLite database connection and runs migrations.
//
// dbPath is either a file path (persistent) or ":memory:" (tests).
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Force an immediate connection so a bad path surfaces here, not on
	// the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight, which
	// matters for a web server sharing one database file.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                       TEXT PRIMARY KEY,
			name                     TEXT NOT NULL DEFAULT '',
			email                    TEXT NOT NULL DEFAULT '',
			image                    TEXT NOT NULL DEFAULT '',
			deactivated_at           INTEGER,
			github_created_at        INTEGER,
			github_profile_synced_at INTEGER,
			created_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// One row per linked provider account. The (provider, account) pair is
	// the primary key: a GitHub account links to exactly one user.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS identities (
			provider            TEXT NOT NULL,
			provider_account_id TEXT NOT NULL,
			user_id             TEXT NOT NULL REFERENCES users(id),
			created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (provider, provider_account_id)
		);
		CREATE INDEX IF NOT EXISTS idx_identities_user_id ON identities(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating identities table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS skills (
			id          TEXT PRIMARY KEY,
			slug        TEXT NOT NULL UNIQUE,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			version     TEXT NOT NULL DEFAULT '',
			license     TEXT NOT NULL DEFAULT '',
			readme      TEXT NOT NULL DEFAULT '',
			owner_id    TEXT NOT NULL REFERENCES users(id),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_skills_owner_id ON skills(owner_id);
		CREATE INDEX IF NOT EXISTS idx_skills_created_at ON skills(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating skills table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS publish_tokens (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			secret_hash TEXT NOT NULL,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_publish_tokens_user_id ON publish_tokens(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating publish_tokens table: %w", err)
	}

	return nil
}

// millisTime converts a scanned epoch-millisecond column back to an
// optional time.
func millisTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}
