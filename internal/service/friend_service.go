package service

import (
	"context"
	"log/slog"

	"friendchat/internal/domain"
)

type FriendService struct {
	friends domain.FriendRepository
	users   domain.UserRepository
	log     *slog.Logger

	// diagnose logs when an unknown user id yields an empty friend list,
	// which would otherwise be indistinguishable from having no friends.
	diagnose bool
}

func NewFriendService(friends domain.FriendRepository, users domain.UserRepository, log *slog.Logger, diagnose bool) *FriendService {
	return &FriendService{
		friends:  friends,
		users:    users,
		log:      log,
		diagnose: diagnose,
	}
}

// ListFriends never fails for an unknown user; it returns an empty list.
func (s *FriendService) ListFriends(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 && s.diagnose {
		s.checkUser(ctx, userID)
	}
	return ids, nil
}

func (s *FriendService) ListFriendUsers(ctx context.Context, userID int64) ([]*domain.User, error) {
	users, err := s.friends.ListFriendUsers(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 && s.diagnose {
		s.checkUser(ctx, userID)
	}
	return users, nil
}

// AddFriend creates the symmetric edge pair and reports whether it was new.
func (s *FriendService) AddFriend(ctx context.Context, a, b int64) (bool, error) {
	if a == b {
		return false, domain.ErrSelfFriend
	}
	created, err := retryOnce(ctx, s.log, "add_friend", func(ctx context.Context) (bool, error) {
		return s.friends.AddFriend(ctx, a, b)
	})
	if err != nil {
		return false, err
	}
	if created {
		s.log.Info("friend added", "user_id", a, "friend_id", b)
	}
	return created, nil
}

func (s *FriendService) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	return s.friends.AreFriends(ctx, a, b)
}

func (s *FriendService) checkUser(ctx context.Context, userID int64) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.log.Warn("friend list: user lookup failed", "user_id", userID, "error", err)
		return
	}
	if u == nil {
		s.log.Warn("friend list requested for unknown user", "user_id", userID)
	}
}
