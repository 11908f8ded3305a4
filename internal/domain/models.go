package domain

import (
	"sort"
	"time"
)

// User represents an application user. Users are created by registration and
// never deleted.
type User struct {
	ID             int64  `db:"id" json:"id"`
	Username       string `db:"username" json:"username"`
	DisplayName    string `db:"display_name" json:"display_name"`
	HashedPassword string `db:"hashed_password" json:"-"`
}

// FriendEdge is one directed half of a friendship. Edges always exist in
// symmetric pairs.
type FriendEdge struct {
	OwnerID  int64 `db:"owner_id"`
	FriendID int64 `db:"friend_id"`
}

// Message is a direct message between two users. Only Seen ever changes after
// the message is appended.
type Message struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	Body       string
	SentAt     time.Time
	Seen       bool
}

// SortByTimeline orders msgs by SentAt, breaking ties by ID.
func SortByTimeline(msgs []*Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return msgs[i].SentAt.Before(msgs[j].SentAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
}
