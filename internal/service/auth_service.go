package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"friendchat/internal/domain"
	"friendchat/internal/security"
)

var ErrBadCredentials = errors.New("incorrect username or password")

// AuthService handles registration and login. It sits outside the chat core
// and only produces the identities the core is handed.
type AuthService struct {
	users  domain.UserRepository
	tokens *security.TokenService
	hash   *security.PasswordHasher
	log    *slog.Logger
}

func NewAuthService(users domain.UserRepository, tokens *security.TokenService, hash *security.PasswordHasher, log *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hash:   hash,
		log:    log,
	}
}

type RegisterInput struct {
	Username    string `json:"username" validate:"required,max=50,excludesall=/"`
	DisplayName string `json:"display_name" validate:"max=100"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Username string
	Password string
}

type TokenResponse struct {
	AccessToken string
	TokenType   string
	User        *domain.User
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if ve := validateStruct(in); !ve.Empty() {
		return nil, ve
	}

	existing, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName := in.DisplayName
	if displayName == "" {
		displayName = in.Username
	}
	user := &domain.User{
		Username:       in.Username,
		DisplayName:    displayName,
		HashedPassword: hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrBadCredentials
	}
	if err := s.hash.Verify(in.Password, user.HashedPassword); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}

	token, err := s.tokens.CreateForUser(user.Username)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}
