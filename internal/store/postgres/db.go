package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"friendchat/internal/domain"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the friendchat schema.
func Migrate(db *sqlx.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id               BIGSERIAL    PRIMARY KEY,
			username         VARCHAR(50)  UNIQUE NOT NULL,
			display_name     VARCHAR(100) NOT NULL DEFAULT '',
			hashed_password  VARCHAR(255) NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS friends (
			owner_id   BIGINT      NOT NULL REFERENCES users(id),
			friend_id  BIGINT      NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (owner_id, friend_id),
			CHECK (owner_id <> friend_id)
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id          BIGSERIAL PRIMARY KEY,
			sender_id   BIGINT    NOT NULL REFERENCES users(id),
			receiver_id BIGINT    NOT NULL REFERENCES users(id),
			body        TEXT      NOT NULL,
			sent_at     BIGINT    NOT NULL,
			seen        BOOLEAN   NOT NULL DEFAULT FALSE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_friends_friend ON friends(friend_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id, sent_at)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_unseen ON messages(sender_id, receiver_id) WHERE seen = FALSE`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}

// classify maps PostgreSQL SQLSTATE codes onto domain errors.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	case "40001", "40P01", "55P03":
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
	return err
}
