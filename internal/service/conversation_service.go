package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"friendchat/internal/domain"
)

// ConversationService composes identity, friend graph and message log into
// the operations the HTTP boundary needs. Every method takes the caller's
// resolved identity explicitly.
type ConversationService struct {
	users    *UserService
	friends  *FriendService
	messages *MessageService
	log      *slog.Logger

	searchLimit int
}

func NewConversationService(
	users *UserService,
	friends *FriendService,
	messages *MessageService,
	log *slog.Logger,
	searchLimit int,
) *ConversationService {
	return &ConversationService{
		users:       users,
		friends:     friends,
		messages:    messages,
		log:         log,
		searchLimit: searchLimit,
	}
}

// Conversation is everything needed to render a chat page.
type Conversation struct {
	Friend    *domain.User
	Thread    []*domain.Message
	FriendIDs []int64
}

// Home returns the current user's friends.
func (s *ConversationService) Home(ctx context.Context, currentID int64) ([]*domain.User, error) {
	return s.friends.ListFriendUsers(ctx, currentID)
}

// DefaultListing returns the first searchLimit users other than the caller,
// in insertion order.
func (s *ConversationService) DefaultListing(ctx context.Context, currentID int64) ([]*domain.User, error) {
	others, err := s.users.ListOthers(ctx, currentID)
	if err != nil {
		return nil, err
	}
	return lo.Subset(others, 0, uint(s.searchLimit)), nil
}

// SearchUsers returns every other user whose username or display name
// contains query, case-sensitively. An empty query matches everyone.
func (s *ConversationService) SearchUsers(ctx context.Context, currentID int64, query string) ([]*domain.User, error) {
	others, err := s.users.ListOthers(ctx, currentID)
	if err != nil {
		return nil, err
	}
	return lo.Filter(others, func(u *domain.User, _ int) bool {
		return strings.Contains(u.Username, query) || strings.Contains(u.DisplayName, query)
	}), nil
}

// AddFriendByName befriends the named user. Adding an existing friend is
// not an error.
func (s *ConversationService) AddFriendByName(ctx context.Context, currentID int64, friendUsername string) (bool, error) {
	friend, err := s.users.Resolve(ctx, friendUsername)
	if err != nil {
		return false, err
	}
	return s.friends.AddFriend(ctx, currentID, friend.ID)
}

func (s *ConversationService) OpenConversation(ctx context.Context, currentID int64, friendUsername string) (*Conversation, error) {
	friend, err := s.users.Resolve(ctx, friendUsername)
	if err != nil {
		return nil, err
	}
	thread, err := s.messages.FetchThread(ctx, currentID, friend.ID)
	if err != nil {
		return nil, err
	}
	friendIDs, err := s.friends.ListFriends(ctx, currentID)
	if err != nil {
		return nil, err
	}
	return &Conversation{
		Friend:    friend,
		Thread:    thread,
		FriendIDs: friendIDs,
	}, nil
}

func (s *ConversationService) PollNewMessages(ctx context.Context, senderID, receiverID int64) ([]*domain.Message, error) {
	return s.messages.FetchUnseenAndMarkSeen(ctx, senderID, receiverID)
}

func (s *ConversationService) SendMessage(ctx context.Context, in MessageCreateInput) (*domain.Message, error) {
	return s.messages.Send(ctx, in)
}
