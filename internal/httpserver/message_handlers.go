package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"friendchat/internal/domain"
	"friendchat/internal/service"
)

type chatResponse struct {
	Friend   *domain.User              `json:"friend"`
	Messages []service.MessageResponse `json:"messages"`
	Friends  []int64                   `json:"friends"`
}

func handleChat(convSvc *service.ConversationService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conv, err := convSvc.OpenConversation(r.Context(), CurrentUser(r).ID, chi.URLParam(r, "username"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		friends := conv.FriendIDs
		if friends == nil {
			friends = []int64{}
		}
		writeJSON(w, http.StatusOK, chatResponse{
			Friend:   conv.Friend,
			Messages: service.ToResponses(conv.Thread),
			Friends:  friends,
		})
	}
}

// handlePollMessages delivers unseen messages sender->receiver and marks them
// seen. Only the receiver may poll.
func handlePollMessages(convSvc *service.ConversationService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID, err := strconv.ParseInt(chi.URLParam(r, "sender"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sender id"})
			return
		}
		receiverID, err := strconv.ParseInt(chi.URLParam(r, "receiver"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid receiver id"})
			return
		}
		if CurrentUser(r).ID != receiverID {
			writeError(w, log, domain.ErrForbidden)
			return
		}

		msgs, err := convSvc.PollNewMessages(r.Context(), senderID, receiverID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, service.ToResponses(msgs))
	}
}

func handleCreateMessage(convSvc *service.ConversationService, maxBytes int64, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		var req service.MessageCreateInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		// A missing sender is a validation error, reported by the service.
		if req.SenderID != 0 && req.SenderID != CurrentUser(r).ID {
			writeError(w, log, domain.ErrForbidden)
			return
		}

		msg, err := convSvc.SendMessage(r.Context(), req)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, service.ToResponse(msg))
	}
}
