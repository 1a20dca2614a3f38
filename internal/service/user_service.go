package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/models"
	"github.com/noah-isme/sikori-api/internal/repository"
)

// UserService manages staff accounts.
type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	Create(ctx context.Context, actor Actor, req dto.UserCreateRequest) (dto.UserResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type userService struct {
	repo      repository.UserRepository
	gate      *WriteGate
	audit     AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs the user management service.
func NewUserService(repo repository.UserRepository, gate *WriteGate, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		gate:      gate,
		audit:     audit,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewUserResponse(user))
	}
	return responses, nil
}

func (s *userService) Create(ctx context.Context, actor Actor, req dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	release, err := s.gate.EnterWrite()
	if err != nil {
		return dto.UserResponse{}, err
	}
	defer release()

	username := strings.TrimSpace(req.Username)
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return dto.UserResponse{}, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Username: username,
		FullName: cleanText(req.FullName),
		Role:     models.Role(req.Role),
		NIP:      trimOptional(req.NIP),
	}
	if err := user.SetPassword(req.Password); err != nil {
		return dto.UserResponse{}, err
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrUsernameTaken
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to create user")
		return dto.UserResponse{}, err
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "user.created",
		EntityType: "user",
		EntityID:   uintString(user.ID),
		Metadata:   map[string]interface{}{"username": user.Username, "role": string(user.Role)},
	})

	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, actor Actor, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	release, err := s.gate.EnterWrite()
	if err != nil {
		return dto.UserResponse{}, err
	}
	defer release()

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	changed := make([]string, 0, 4)
	if req.FullName != nil {
		user.FullName = cleanText(*req.FullName)
		changed = append(changed, "fullName")
	}
	if req.NIP != nil {
		user.NIP = trimOptional(req.NIP)
		changed = append(changed, "nip")
	}
	if req.Role != nil && models.Role(*req.Role) != user.Role {
		if user.Role == models.RoleSuperAdmin {
			if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
				return dto.UserResponse{}, err
			}
		}
		user.Role = models.Role(*req.Role)
		changed = append(changed, "role")
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return dto.UserResponse{}, err
		}
		changed = append(changed, "password")
	}

	if err := s.repo.Save(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "user.updated",
		EntityType: "user",
		EntityID:   uintString(user.ID),
		Metadata:   map[string]interface{}{"fields": changed},
	})

	return dto.NewUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, actor Actor, id uint) error {
	if actor.ID == id {
		return ErrSelfDelete
	}

	release, err := s.gate.EnterWrite()
	if err != nil {
		return err
	}
	defer release()

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Role == models.RoleSuperAdmin {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "user.deleted",
		EntityType: "user",
		EntityID:   uintString(id),
		Metadata:   map[string]interface{}{"username": user.Username},
	})

	return nil
}

func (s *userService) ensureAnotherSuperAdmin(ctx context.Context) error {
	total, err := s.repo.CountByRole(ctx, models.RoleSuperAdmin)
	if err != nil {
		return err
	}
	if total <= 1 {
		return ErrLastSuperAdmin
	}
	return nil
}
