package seeders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ganzorig/mishil/app/models"
	"github.com/ganzorig/mishil/app/repositories"
	"github.com/ganzorig/mishil/config"
	"github.com/ganzorig/mishil/pkg/auth"
	"github.com/ganzorig/mishil/pkg/logger"
)

func init() {
	Register("admin", SeedAdmin)
}

// SeedAdmin bootstraps the first admin account from ADMIN_PHONE and
// ADMIN_PIN. Idempotent: an existing account with that phone number is
// promoted rather than duplicated, and unset env vars skip the seed.
func SeedAdmin(ctx context.Context) error {
	phone := config.AdminPhone()
	pin := config.AdminPIN()
	if phone == "" || pin == "" {
		return nil
	}

	users := repositories.NewUserRepository()

	existing, err := users.FindByPhone(ctx, phone)
	if err == nil {
		if existing.IsAdmin() {
			return nil
		}
		if err := users.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("promote existing account: %w", err)
		}
		logger.Info("admin seeder: promoted existing account", "phone", phone)
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPIN(pin)
	if err != nil {
		return fmt.Errorf("ADMIN_PIN: %w", err)
	}
	admin := &models.User{
		PhoneNumber: phone,
		Name:        "Administrator",
		Password:    hash,
		Role:        models.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	logger.Info("admin seeder: created admin account", "phone", phone)
	return nil
}
