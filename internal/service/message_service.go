package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"

	"friendchat/internal/domain"
)

// MessageService is the append-only direct message log.
type MessageService struct {
	messages domain.MessageRepository
	users    domain.UserRepository
	log      *slog.Logger
	now      func() time.Time

	MaxMessageLength int
}

func NewMessageService(
	messages domain.MessageRepository,
	users domain.UserRepository,
	log *slog.Logger,
	maxMessageLength int,
) *MessageService {
	return &MessageService{
		messages:         messages,
		users:            users,
		log:              log,
		now:              time.Now,
		MaxMessageLength: maxMessageLength,
	}
}

type MessageCreateInput struct {
	SenderID   int64  `json:"sender" validate:"required,gt=0"`
	ReceiverID int64  `json:"receiver" validate:"required,gt=0"`
	Body       string `json:"body" validate:"required"`
}

// Send validates in and appends it to the log with seen = false.
func (s *MessageService) Send(ctx context.Context, in MessageCreateInput) (*domain.Message, error) {
	in.Body = strings.TrimSpace(in.Body)

	ve := validateStruct(in)
	if s.MaxMessageLength > 0 && utf8.RuneCountInString(in.Body) > s.MaxMessageLength {
		ve.Add("body", "must be at most "+strconv.Itoa(s.MaxMessageLength)+" characters")
	}
	for _, ref := range []struct {
		field string
		id    int64
	}{{"sender", in.SenderID}, {"receiver", in.ReceiverID}} {
		if ref.id <= 0 {
			continue
		}
		u, err := s.users.GetByID(ctx, ref.id)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", ref.field, err)
		}
		if u == nil {
			ve.Add(ref.field, "unknown user")
		}
	}
	if !ve.Empty() {
		return nil, ve
	}

	msg := &domain.Message{
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Body:       in.Body,
		SentAt:     s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.log.Debug("message sent", "message_id", msg.ID, "sender_id", msg.SenderID, "receiver_id", msg.ReceiverID)
	return msg, nil
}

// FetchThread returns both directions of the a/b conversation, oldest first.
func (s *MessageService) FetchThread(ctx context.Context, a, b int64) ([]*domain.Message, error) {
	return s.messages.ListThread(ctx, a, b)
}

// FetchUnseenAndMarkSeen hands out each unseen sender->receiver message
// exactly once across all concurrent callers.
func (s *MessageService) FetchUnseenAndMarkSeen(ctx context.Context, senderID, receiverID int64) ([]*domain.Message, error) {
	return retryOnce(ctx, s.log, "take_unseen", func(ctx context.Context) ([]*domain.Message, error) {
		return s.messages.TakeUnseen(ctx, senderID, receiverID)
	})
}

// MessageResponse is the wire shape of a message.
type MessageResponse struct {
	Sender   int64     `json:"sender"`
	Receiver int64     `json:"receiver"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
	Seen     bool      `json:"seen"`
}

func ToResponse(m *domain.Message) MessageResponse {
	return MessageResponse{
		Sender:   m.SenderID,
		Receiver: m.ReceiverID,
		Body:     m.Body,
		SentAt:   m.SentAt,
		Seen:     m.Seen,
	}
}

func ToResponses(msgs []*domain.Message) []MessageResponse {
	return lo.Map(msgs, func(m *domain.Message, _ int) MessageResponse {
		return ToResponse(m)
	})
}
