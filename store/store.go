// Package store provides persistence for user preferences.
package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/pbhm215/everyday-pda/assistant"
)

// ErrUserAlreadyExists is returned when creating a user whose username is taken.
var ErrUserAlreadyExists = errors.New("user already exists")

// ErrUserNotFound is returned when the named user does not exist.
var ErrUserNotFound = errors.New("user not found")

// Driver is the database-specific access layer. Postgres is the production
// driver; SQLite is supported on a best-effort basis for development.
type Driver interface {
	GetDB() *sql.DB
	Migrate(ctx context.Context) error

	CreateUser(ctx context.Context, create *User) (*User, error)
	GetUser(ctx context.Context, username string) (*User, error)
	UpdateUser(ctx context.Context, username string, update *UpdateUser) (*User, error)
	ListUsernames(ctx context.Context) ([]string, error)
	LookupPreference(ctx context.Context, field, username string) ([]string, error)

	Close() error
}

// Store provides access to all persisted objects. It implements the
// assistant's PreferenceStore contract.
type Store struct {
	driver Driver
}

var _ assistant.PreferenceStore = (*Store)(nil)

// New creates a new instance of Store.
func New(driver Driver) *Store {
	return &Store{driver: driver}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	return s.driver.CreateUser(ctx, create)
}

func (s *Store) GetUser(ctx context.Context, username string) (*User, error) {
	return s.driver.GetUser(ctx, username)
}

func (s *Store) UpdateUser(ctx context.Context, username string, update *UpdateUser) (*User, error) {
	return s.driver.UpdateUser(ctx, username, update)
}

func (s *Store) ListUsernames(ctx context.Context) ([]string, error) {
	return s.driver.ListUsernames(ctx)
}

// LookupPreference answers one field lookup for one user. Each call borrows
// its own pooled connection and releases it before returning; no
// transaction ever spans multiple lookups. An empty result means the user
// has nothing persisted for the field.
func (s *Store) LookupPreference(ctx context.Context, field assistant.FieldName, username string) ([]string, error) {
	return s.driver.LookupPreference(ctx, string(field), username)
}
