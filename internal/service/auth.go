// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/strucbot/strucbot/internal/auth"
	"github.com/strucbot/strucbot/internal/metrics"
	"github.com/strucbot/strucbot/internal/model"
	"github.com/strucbot/strucbot/internal/store"
)

// Service errors.
var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService handles registration, login and profile management.
type AuthService struct {
	store    store.UserStore
	tokens   *auth.TokenService
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(users store.UserStore, tokens *auth.TokenService, logger *slog.Logger, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		store:    users,
		tokens:   tokens,
		logger:   logger,
		recorder: recorder,
	}
}

// Register creates a new account with role "user" and an empty schema
// collection.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := &model.User{
		ID:           store.NewUserID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.recorder.IncUserRegistered()
	s.logger.Info("user_registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token string
	User  *model.User
}

// Login verifies credentials and issues a session token. Unknown user
// and wrong password both come back as ErrInvalidCredentials so
// username existence never leaks.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (*LoginResult, error) {
	if usernameOrEmail == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByLogin(ctx, usernameOrEmail)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.recorder.IncLoginFailure()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		s.recorder.IncLoginFailure()
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.recorder.IncLoginSuccess()
	s.logger.Info("user_logged_in", "user_id", user.ID, "username", user.Username)
	return &LoginResult{Token: token, User: user}, nil
}

// Profile returns the current account for the given user id.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	return user, nil
}

// UpdateProfile changes username and/or email. Empty fields are kept.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, username, email string) (*model.User, error) {
	user, err := s.store.UpdateUser(ctx, userID, username, email)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, store.ErrUserExists):
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info("profile_updated", "user_id", user.ID, "username", user.Username)
	return user, nil
}
