package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"friendchat/internal/config"
	"friendchat/internal/security"
	"friendchat/internal/service"
	"friendchat/internal/store"
)

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
func NewRouter(cfg *config.Config, st *store.Store, tokenSvc *security.TokenService, passwordHasher *security.PasswordHasher, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services
	authSvc := service.NewAuthService(st.Users, tokenSvc, passwordHasher, log)
	userSvc := service.NewUserService(st.Users)
	friendSvc := service.NewFriendService(st.Friends, st.Users, log, !cfg.IsProduction())
	msgSvc := service.NewMessageService(st.Messages, st.Users, log, cfg.MaxMessageLength)
	convSvc := service.NewConversationService(userSvc, friendSvc, msgSvc, log, cfg.SearchDefaultLimit)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handleRegister(authSvc, log))
		r.Post("/login", handleLogin(authSvc, log))
		r.With(AuthMiddleware(tokenSvc, st.Users, log)).Get("/me", handleMe())
	})

	// Everything below acts on behalf of the authenticated user.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(tokenSvc, st.Users, log))

		r.Get("/", handleHome(convSvc, log))
		r.Get("/search", handleSearchPage(convSvc, log))
		r.Post("/search", handleSearch(convSvc, log))
		r.Get("/add_friend/{username}", handleAddFriend(convSvc, log))
		r.Get("/chat/{username}", handleChat(convSvc, log))
		r.Get("/messages/{sender}/{receiver}", handlePollMessages(convSvc, log))
		r.Post("/messages", handleCreateMessage(convSvc, messageBodyLimit(cfg.MaxMessageLength), log))
	})

	return r
}

// messageBodyLimit bounds a POST /messages payload. A rune may take up to
// twelve bytes once JSON-escaped as a surrogate pair.
func messageBodyLimit(maxRunes int) int64 {
	if maxRunes <= 0 {
		return 1 << 20
	}
	return int64(maxRunes)*12 + 1<<10
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
