package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/sikori-api/internal/models"
	"github.com/noah-isme/sikori-api/internal/repository"
)

// SuperAdminSeed describes the bootstrap account.
type SuperAdminSeed struct {
	Username string
	Password string
	FullName string
}

// SeedService guarantees the store has an administrator at start-up.
type SeedService interface {
	EnsureSuperAdmin(ctx context.Context, seed SuperAdminSeed) (bool, error)
}

type seedService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(users repository.UserRepository, logger zerolog.Logger) SeedService {
	return &seedService{
		users:  users,
		logger: logger.With().Str("component", "seed_service").Logger(),
	}
}

// EnsureSuperAdmin creates or promotes the configured account when no
// SUPER_ADMIN exists. It reports whether anything was written. A random
// password is generated and logged once when none is configured.
func (s *seedService) EnsureSuperAdmin(ctx context.Context, seed SuperAdminSeed) (bool, error) {
	total, err := s.users.CountByRole(ctx, models.RoleSuperAdmin)
	if err != nil {
		return false, err
	}
	if total > 0 {
		return false, nil
	}

	username := strings.TrimSpace(seed.Username)
	if username == "" {
		username = "superadmin"
	}
	fullName := strings.TrimSpace(seed.FullName)
	if fullName == "" {
		fullName = "Super Administrator"
	}

	password := seed.Password
	generated := password == ""
	if generated {
		password = strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	}

	user, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		user.Role = models.RoleSuperAdmin
		if user.PasswordHash == "" || !generated {
			if err := user.SetPassword(password); err != nil {
				return false, err
			}
		} else {
			generated = false
		}
		if err := s.users.Save(ctx, &user); err != nil {
			return false, err
		}
		s.logger.Warn().Str("username", username).Msg("existing account promoted to super admin")
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Username: username, FullName: fullName, Role: models.RoleSuperAdmin}
		if err := user.SetPassword(password); err != nil {
			return false, err
		}
		if err := s.users.Create(ctx, &user); err != nil {
			return false, err
		}
		s.logger.Info().Str("username", username).Msg("super admin account created")
	default:
		return false, err
	}

	if generated {
		s.logger.Warn().Str("username", username).Str("password", password).Msg("generated super admin password, change it after first login")
	}
	return true, nil
}
