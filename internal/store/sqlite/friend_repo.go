package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"friendchat/internal/domain"
)

type FriendRepo struct {
	db *sqlx.DB
}

func NewFriendRepo(db *sqlx.DB) *FriendRepo {
	return &FriendRepo{db: db}
}

var _ domain.FriendRepository = (*FriendRepo)(nil)

func (r *FriendRepo) ListFriends(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT friend_id
		FROM friends
		WHERE owner_id = ?
		ORDER BY created_at ASC, friend_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return ids, nil
}

func (r *FriendRepo) ListFriendUsers(ctx context.Context, userID int64) ([]*domain.User, error) {
	users := []*domain.User{}
	err := r.db.SelectContext(ctx, &users, `
		SELECT u.id, u.username, u.display_name, u.hashed_password
		FROM users u
		JOIN friends f ON f.friend_id = u.id
		WHERE f.owner_id = ?
		ORDER BY f.created_at ASC, u.id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list friend users: %w", err)
	}
	return users, nil
}

func (r *FriendRepo) AddFriend(ctx context.Context, a, b int64) (bool, error) {
	if a == b {
		return false, domain.ErrSelfFriend
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", classify(err))
	}
	defer tx.Rollback()

	var created int64
	lo, hi := min(a, b), max(a, b)
	for _, edge := range [][2]int64{{lo, hi}, {hi, lo}} {
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO friends (owner_id, friend_id, created_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
		`, edge[0], edge[1])
		if err != nil {
			return false, fmt.Errorf("insert friend edge: %w", classify(err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("rows affected: %w", err)
		}
		created += n
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", classify(err))
	}
	return created > 0, nil
}

func (r *FriendRepo) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1
		FROM friends
		WHERE owner_id = ? AND friend_id = ?
	`, a, b).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("are friends: %w", err)
	}
	return true, nil
}
