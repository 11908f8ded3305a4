package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"friendchat/internal/domain"
)

const messageColumns = `id, sender_id, receiver_id, body, sent_at, seen`

type messageRow struct {
	ID         int64  `db:"id"`
	SenderID   int64  `db:"sender_id"`
	ReceiverID int64  `db:"receiver_id"`
	Body       string `db:"body"`
	SentAt     int64  `db:"sent_at"`
	Seen       bool   `db:"seen"`
}

func (m messageRow) toDomain() *domain.Message {
	return &domain.Message{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Body:       m.Body,
		SentAt:     time.Unix(0, m.SentAt).UTC(),
		Seen:       m.Seen,
	}
}

type MessageRepo struct {
	db *sqlx.DB
}

func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	// sent_at is bumped past the newest stored message so the log stays
	// strictly ordered even when the wall clock stalls or steps back.
	var sentAt int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO messages (sender_id, receiver_id, body, sent_at, seen)
		SELECT ?, ?, ?, MAX(?, COALESCE((SELECT MAX(sent_at) FROM messages), 0) + 1), 0
		RETURNING id, sent_at
	`, m.SenderID, m.ReceiverID, m.Body, m.SentAt.UnixNano()).Scan(&m.ID, &sentAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", classify(err))
	}
	m.SentAt = time.Unix(0, sentAt).UTC()
	m.Seen = false
	return nil
}

func (r *MessageRepo) ListThread(ctx context.Context, a, b int64) ([]*domain.Message, error) {
	var rows []messageRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?)
		   OR (sender_id = ? AND receiver_id = ?)
		ORDER BY sent_at ASC, id ASC
	`, a, b, b, a)
	if err != nil {
		return nil, fmt.Errorf("list thread: %w", err)
	}
	return toMessages(rows), nil
}

func (r *MessageRepo) TakeUnseen(ctx context.Context, senderID, receiverID int64) ([]*domain.Message, error) {
	var rows []messageRow
	err := r.db.SelectContext(ctx, &rows, `
		UPDATE messages
		SET seen = 1
		WHERE sender_id = ? AND receiver_id = ? AND seen = 0
		RETURNING `+messageColumns+`
	`, senderID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("take unseen: %w", classify(err))
	}
	msgs := toMessages(rows)
	domain.SortByTimeline(msgs)
	return msgs, nil
}

func toMessages(rows []messageRow) []*domain.Message {
	return lo.Map(rows, func(row messageRow, _ int) *domain.Message {
		return row.toDomain()
	})
}
