package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"friendchat/internal/domain"
)

// appendLockKey serialises appends so sent_at stays strictly increasing.
const appendLockKey = 0x6d7367 // "msg"

type messageRow struct {
	ID         int64  `db:"id"`
	SenderID   int64  `db:"sender_id"`
	ReceiverID int64  `db:"receiver_id"`
	Body       string `db:"body"`
	SentAt     int64  `db:"sent_at"`
	Seen       bool   `db:"seen"`
}

type MessageRepo struct {
	db *sqlx.DB
}

func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, appendLockKey); err != nil {
		return fmt.Errorf("lock message log: %w", classify(err))
	}

	var sentAt int64
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO messages (sender_id, receiver_id, body, sent_at, seen)
		SELECT $1::BIGINT, $2::BIGINT, $3::TEXT, GREATEST($4::BIGINT, COALESCE(MAX(sent_at), 0) + 1), FALSE
		FROM messages
		RETURNING id, sent_at
	`, m.SenderID, m.ReceiverID, m.Body, m.SentAt.UnixNano()).Scan(&m.ID, &sentAt); err != nil {
		return fmt.Errorf("insert message: %w", classify(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append tx: %w", classify(err))
	}
	m.SentAt = time.Unix(0, sentAt).UTC()
	m.Seen = false
	return nil
}

func (r *MessageRepo) ListThread(ctx context.Context, a, b int64) ([]*domain.Message, error) {
	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT id, sender_id, receiver_id, body, sent_at, seen
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY sent_at ASC, id ASC
	`, a, b); err != nil {
		return nil, fmt.Errorf("list thread: %w", err)
	}
	return toMessages(rows), nil
}

// TakeUnseen relies on row locking: a concurrent UPDATE blocked on the same
// row re-checks seen = FALSE after the first commits and skips it.
func (r *MessageRepo) TakeUnseen(ctx context.Context, senderID, receiverID int64) ([]*domain.Message, error) {
	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, `
		UPDATE messages
		SET seen = TRUE
		WHERE sender_id = $1 AND receiver_id = $2 AND seen = FALSE
		RETURNING id, sender_id, receiver_id, body, sent_at, seen
	`, senderID, receiverID); err != nil {
		return nil, fmt.Errorf("take unseen: %w", classify(err))
	}
	msgs := toMessages(rows)
	domain.SortByTimeline(msgs)
	return msgs, nil
}

func toMessages(rows []messageRow) []*domain.Message {
	return lo.Map(rows, func(row messageRow, _ int) *domain.Message {
		return &domain.Message{
			ID:         row.ID,
			SenderID:   row.SenderID,
			ReceiverID: row.ReceiverID,
			Body:       row.Body,
			SentAt:     time.Unix(0, row.SentAt).UTC(),
			Seen:       row.Seen,
		}
	})
}
