package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/models"
	"github.com/noah-isme/sikori-api/internal/repository"
)

// ActivityService manages activities with their rubric and checklist.
type ActivityService interface {
	List(ctx context.Context, class string) ([]dto.ActivityResponse, error)
	Get(ctx context.Context, id string) (dto.ActivityResponse, error)
	Create(ctx context.Context, actor Actor, req dto.ActivityCreateRequest) (dto.ActivityResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type activityService struct {
	repo      repository.ActivityRepository
	gate      *WriteGate
	reports   ReportInvalidator
	audit     AuditRecorder
	events    EventPublisher
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewActivityService constructs the activity service.
func NewActivityService(repo repository.ActivityRepository, gate *WriteGate, reports ReportInvalidator, audit AuditRecorder, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:      repo,
		gate:      gate,
		reports:   reports,
		audit:     audit,
		events:    events,
		validator: validate,
		logger:    logger.With().Str("component", "activity_service").Logger(),
	}
}

// List returns every activity, or only those open to class when one is given.
func (s *activityService) List(ctx context.Context, class string) ([]dto.ActivityResponse, error) {
	activities, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	class = normalizeClassFilter(class)
	responses := make([]dto.ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		if class != "all" && !activity.AppliesTo(class) {
			continue
		}
		responses = append(responses, dto.NewActivityResponse(activity))
	}
	return responses, nil
}

func (s *activityService) Get(ctx context.Context, id string) (dto.ActivityResponse, error) {
	activity, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActivityResponse{}, ErrActivityNotFound
		}
		return dto.ActivityResponse{}, err
	}
	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) Create(ctx context.Context, actor Actor, req dto.ActivityCreateRequest) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ActivityResponse{}, err
	}

	activity, err := activityFromRequest(req)
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	release, err := s.gate.EnterWrite()
	if err != nil {
		return dto.ActivityResponse{}, err
	}
	defer release()

	if err := s.repo.Create(ctx, &activity); err != nil {
		s.logger.Error().Err(err).Str("activity", activity.Name).Msg("failed to create activity")
		return dto.ActivityResponse{}, err
	}

	if s.reports != nil {
		s.reports.InvalidateActivity(ctx, activity.ID)
	}
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     EventActivityCreated,
		EntityType: "activity",
		EntityID:   activity.ID,
		Metadata: map[string]interface{}{
			"name":    activity.Name,
			"aspects": len(activity.SummativeAspects),
			"items":   len(activity.FormativeItems),
		},
	})
	publishEvent(ctx, s.events, s.logger, EventActivityCreated, map[string]interface{}{"activityId": activity.ID})

	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) Delete(ctx context.Context, actor Actor, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrActivityNotFound
	}

	release, err := s.gate.EnterWrite()
	if err != nil {
		return err
	}
	defer release()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActivityNotFound
		}
		return err
	}

	if s.reports != nil {
		s.reports.InvalidateActivity(ctx, id)
	}
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     EventActivityDeleted,
		EntityType: "activity",
		EntityID:   id,
	})
	publishEvent(ctx, s.events, s.logger, EventActivityDeleted, map[string]interface{}{"activityId": id})

	return nil
}

func activityFromRequest(req dto.ActivityCreateRequest) (models.Activity, error) {
	activity := models.Activity{
		ID:            uuid.NewString(),
		Name:          cleanText(req.Name),
		TargetClasses: datatypes.JSONSlice[string](normalizeClasses(req.TargetClasses)),
	}

	for _, aspect := range req.SummativeAspects {
		dimension := models.Dimension(strings.TrimSpace(aspect.Dimension))
		if !dimension.Valid() {
			return models.Activity{}, fmt.Errorf("%w: %q", ErrInvalidDimension, aspect.Dimension)
		}
		activity.SummativeAspects = append(activity.SummativeAspects, models.SummativeAspect{
			ID:         uuid.NewString(),
			ActivityID: activity.ID,
			Name:       cleanText(aspect.Name),
			Dimension:  dimension,
		})
	}

	for _, item := range req.FormativeItems {
		activity.FormativeItems = append(activity.FormativeItems, models.FormativeItem{
			ID:         uuid.NewString(),
			ActivityID: activity.ID,
			Name:       cleanText(item.Name),
		})
	}

	return activity, nil
}

func normalizeClasses(classes []string) []string {
	seen := make(map[string]struct{}, len(classes))
	normalized := make([]string, 0, len(classes))
	for _, class := range classes {
		class = strings.TrimSpace(class)
		key := strings.ToLower(class)
		if class == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		normalized = append(normalized, class)
	}
	return normalized
}
