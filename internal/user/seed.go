package user

import (
	"context"
	"fmt"
	"log/slog"
)

type AdminSeed struct {
	Username string
	Email    string
	Password string
}

// SeedAdmin creates a verified admin account when the store has none.
// It reports whether an account was created.
func SeedAdmin(ctx context.Context, s *Store, seed AdminSeed, log *slog.Logger) (bool, error) {
	exists, err := s.HasAdmin(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	hash, err := HashPassword(seed.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	admin := &User{
		Username:     seed.Username,
		Email:        seed.Email,
		PasswordHash: hash,
		Role:         RoleAdmin,
		Verified:     true,
	}
	if err := s.Create(ctx, admin); err != nil {
		return false, err
	}
	log.Info("admin account seeded", "username", admin.Username, "user_id", admin.ID)
	return true, nil
}
