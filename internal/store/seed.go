package store

import (
	"context"
	"errors"
	"time"

	"github.com/strucbot/strucbot/internal/auth"
	"github.com/strucbot/strucbot/internal/model"
)

// Demo admin credentials, seeded at startup for easy access.
const (
	SeedAdminUsername = "admin"
	SeedAdminEmail    = "admin@strucbot.com"
	SeedAdminPassword = "admin123"
)

// SeedAdmin ensures the fixed demo admin account exists.
func SeedAdmin(ctx context.Context, s Store) error {
	_, err := s.GetUserByLogin(ctx, SeedAdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	hash, err := auth.HashPassword(SeedAdminPassword)
	if err != nil {
		return err
	}

	admin := &model.User{
		ID:           NewUserID(),
		Username:     SeedAdminUsername,
		Email:        SeedAdminEmail,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.CreateUser(ctx, admin); err != nil {
		// Lost a race with another instance seeding the same account.
		if errors.Is(err, ErrUserExists) {
			return nil
		}
		return err
	}
	return nil
}
