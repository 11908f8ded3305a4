// Package store selects a database backend and exposes its repositories.
package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"friendchat/internal/domain"
	"friendchat/internal/store/postgres"
	"friendchat/internal/store/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store bundles the repositories of one open database.
type Store struct {
	Users    domain.UserRepository
	Friends  domain.FriendRepository
	Messages domain.MessageRepository

	driver string
	db     *sqlx.DB
}

// Open connects to the backend named by driver.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		db, err := sqlite.Open(dsn)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users:    sqlite.NewUserRepo(db),
			Friends:  sqlite.NewFriendRepo(db),
			Messages: sqlite.NewMessageRepo(db),
			driver:   driver,
			db:       db,
		}, nil
	case DriverPostgres:
		db, err := postgres.Open(dsn)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users:    postgres.NewUserRepo(db),
			Friends:  postgres.NewFriendRepo(db),
			Messages: postgres.NewMessageRepo(db),
			driver:   driver,
			db:       db,
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

// Migrate applies the backend's schema.
func (s *Store) Migrate() error {
	if s.driver == DriverPostgres {
		return postgres.Migrate(s.db)
	}
	return sqlite.Migrate(s.db)
}

func (s *Store) Close() error {
	return s.db.Close()
}
