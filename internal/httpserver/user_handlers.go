package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"friendchat/internal/domain"
	"friendchat/internal/service"
)

type searchResponse struct {
	Users   []*domain.User `json:"users"`
	Friends []*domain.User `json:"friends"`
}

func handleHome(convSvc *service.ConversationService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		friends, err := convSvc.Home(r.Context(), CurrentUser(r).ID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(friends))
	}
}

// handleSearchPage returns the default listing alongside the caller's friends.
func handleSearchPage(convSvc *service.ConversationService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current := CurrentUser(r)
		users, err := convSvc.DefaultListing(r.Context(), current.ID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		friends, err := convSvc.Home(r.Context(), current.ID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, searchResponse{Users: nonNil(users), Friends: nonNil(friends)})
	}
}

func handleSearch(convSvc *service.ConversationService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form body"})
			return
		}
		users, err := convSvc.SearchUsers(r.Context(), CurrentUser(r).ID, r.PostForm.Get("search"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]*domain.User{"users": nonNil(users)})
	}
}

func handleAddFriend(convSvc *service.ConversationService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		if _, err := convSvc.AddFriendByName(r.Context(), CurrentUser(r).ID, username); err != nil {
			writeError(w, log, err)
			return
		}
		http.Redirect(w, r, "/search", http.StatusFound)
	}
}

func nonNil(users []*domain.User) []*domain.User {
	if users == nil {
		return []*domain.User{}
	}
	return users
}
