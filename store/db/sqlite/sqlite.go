package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/pbhm215/everyday-pda/internal/profile"
	"github.com/pbhm215/everyday-pda/store"
)

// SQLite is supported on a best-effort basis for development and demos only.
// It covers the user and preference CRUD surface; anything that needs
// concurrent writers should run on the postgres driver instead.

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database file named by the profile's DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// WAL journal mode avoids most locking issues, and a single pooled
	// connection is optimal for a local file. With the modernc.org/sqlite
	// driver each pragma must be prefixed with `_pragma=`.
	sqliteDB, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)
	sqliteDB.SetConnMaxIdleTime(0)

	return &DB{db: sqliteDB, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	u_id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	course TEXT NOT NULL DEFAULT '',
	cafeteria TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	preferred_transport_medium TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS stocks (
	s_id INTEGER PRIMARY KEY AUTOINCREMENT,
	stock_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS user_stocks (
	u_id INTEGER NOT NULL REFERENCES users (u_id) ON DELETE CASCADE,
	s_id INTEGER NOT NULL REFERENCES stocks (s_id) ON DELETE CASCADE,
	PRIMARY KEY (u_id, s_id)
);

CREATE TABLE IF NOT EXISTS news (
	n_id INTEGER PRIMARY KEY AUTOINCREMENT,
	news_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS user_news (
	u_id INTEGER NOT NULL REFERENCES users (u_id) ON DELETE CASCADE,
	n_id INTEGER NOT NULL REFERENCES news (n_id) ON DELETE CASCADE,
	PRIMARY KEY (u_id, n_id)
);
`

// Migrate creates the preference schema if it does not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}
	return nil
}
