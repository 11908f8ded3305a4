package domain

import (
	"context"
)

// UserRepository defines persistence operations for users.
// Lookups return (nil, nil) when no user matches.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// ListOthers returns every user except excludeID in insertion order.
	ListOthers(ctx context.Context, excludeID int64) ([]*User, error)
}

// FriendRepository maintains the symmetric friend graph.
type FriendRepository interface {
	// ListFriends returns the friend ids of userID, empty when the user has
	// no edges or does not exist.
	ListFriends(ctx context.Context, userID int64) ([]int64, error)
	ListFriendUsers(ctx context.Context, userID int64) ([]*User, error)
	// AddFriend inserts (a,b) and (b,a) in one transaction. It reports
	// whether the pair was newly created and fails with ErrSelfFriend when
	// a == b.
	AddFriend(ctx context.Context, a, b int64) (bool, error)
	AreFriends(ctx context.Context, a, b int64) (bool, error)
}

// MessageRepository is the append-only direct message log.
type MessageRepository interface {
	// Create appends m, assigning ID and a SentAt strictly later than any
	// previously appended message. m.SentAt is used as the clock reading.
	Create(ctx context.Context, m *Message) error
	// ListThread returns messages between a and b in either direction,
	// ordered by (sent_at, id).
	ListThread(ctx context.Context, a, b int64) ([]*Message, error)
	// TakeUnseen atomically marks every unseen sender->receiver message as
	// seen and returns them ordered by (sent_at, id).
	TakeUnseen(ctx context.Context, senderID, receiverID int64) ([]*Message, error)
}
