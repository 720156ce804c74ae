// Package db provides the database driver factory.
package db

import (
	"github.com/pkg/errors"

	"github.com/pbhm215/everyday-pda/internal/profile"
	"github.com/pbhm215/everyday-pda/store"
	"github.com/pbhm215/everyday-pda/store/db/postgres"
	"github.com/pbhm215/everyday-pda/store/db/sqlite"
)

// NewDBDriver creates the store driver selected by the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "postgres":
		return postgres.NewDB(profile)
	case "sqlite":
		return sqlite.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q", profile.Driver)
	}
}
