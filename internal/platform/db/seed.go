package db

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"hrms/internal/domain/auth"
	"hrms/internal/platform/config"
	"hrms/internal/platform/querier"
)

// Seed ensures the bootstrap admin account exists. It is a no-op when no
// seed credentials are configured or the account is already present.
func Seed(ctx context.Context, q querier.Querier, cfg config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	if email == "" || strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		return nil
	}

	store := auth.NewStore(q)
	if _, err := store.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, auth.ErrUserNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	user, err := store.CreateUser(ctx, email, hash, auth.MetadataForRole(auth.RoleAdmin, "Administrator", email))
	if err != nil && !errors.Is(err, auth.ErrEmailTaken) {
		return err
	}
	slog.Info("seeded admin account", "userId", user.ID, "email", email)
	return nil
}
