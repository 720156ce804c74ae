// Package postgres implements the production store driver.
package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/pbhm215/everyday-pda/internal/profile"
	"github.com/pbhm215/everyday-pda/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a connection pool to the PostgreSQL instance named by the
// profile's DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database with dsn: %s", profile.DSN)
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	u_id SERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	course TEXT NOT NULL DEFAULT '',
	cafeteria TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	preferred_transport_medium TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS stocks (
	s_id SERIAL PRIMARY KEY,
	stock_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS user_stocks (
	u_id INTEGER NOT NULL REFERENCES users (u_id) ON DELETE CASCADE,
	s_id INTEGER NOT NULL REFERENCES stocks (s_id) ON DELETE CASCADE,
	PRIMARY KEY (u_id, s_id)
);

CREATE TABLE IF NOT EXISTS news (
	n_id SERIAL PRIMARY KEY,
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
