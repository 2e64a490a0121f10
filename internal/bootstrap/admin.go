// Package bootstrap handles one-time initialization tasks for the application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Fletcher15478/Ecomm/internal/auth"
	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// AdminConfig contains configuration for the initial admin user.
type AdminConfig struct {
	Email    string
	Password string
}

// Validate checks that the admin configuration is valid.
func (c *AdminConfig) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("admin email is required")
	}
	if c.Password == "" {
		return errors.New("admin password is required")
	}
	if len(c.Password) < 12 {
		return errors.New("admin password must be at least 12 characters")
	}
	return nil
}

// EnsureMasterAdmin creates the first admin user when no staff account exists.
// It is safe to call on every startup.
//
// If AdminConfig is nil or has empty Email/Password, it logs a warning and skips.
// Once any admin exists, the configuration is ignored.
func EnsureMasterAdmin(ctx context.Context, users domain.AdminUserStore, cfg *AdminConfig, logger *slog.Logger) error {
	count, err := users.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admin users: %w", err)
	}
	if count > 0 {
		logger.Debug("bootstrap: admin users already exist", "count", count)
		return nil
	}

	// If no config provided, skip admin creation (allows running without admin in dev)
	if cfg == nil || cfg.Email == "" || cfg.Password == "" {
		logger.Warn("bootstrap: skipping admin creation - ADMIN_EMAIL or ADMIN_PASSWORD not set",
			"hint", "Set these environment variables to create an admin user on first startup",
		)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid admin configuration: %w", err)
	}

	passwordHash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user, err := users.CreateAdmin(ctx, strings.TrimSpace(cfg.Email), passwordHash, domain.AdminRoleAdmin)
	if err != nil {
		// Another instance won the race.
		if domain.IsCode(err, domain.ECONFLICT) {
			logger.Info("bootstrap: admin user already exists (concurrent creation)", "email", cfg.Email)
			return nil
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("bootstrap: admin user created successfully",
		"email", user.Email,
		"user_id", user.ID,
	)
	return nil
}
