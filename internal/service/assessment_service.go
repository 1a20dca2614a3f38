package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/models"
	"github.com/noah-isme/sikori-api/internal/observability"
	"github.com/noah-isme/sikori-api/internal/repository"
)

// AssessmentService records and lists per-student assessments.
type AssessmentService interface {
	List(ctx context.Context, req dto.AssessmentListRequest) ([]dto.AssessmentResponse, error)
	Upsert(ctx context.Context, actor Actor, req dto.AssessmentUpsertRequest) (dto.AssessmentResponse, error)
}

type assessmentService struct {
	assessments repository.AssessmentRepository
	students    repository.StudentRepository
	activities  repository.ActivityRepository
	gate        *WriteGate
	reports     ReportInvalidator
	events      EventPublisher
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewAssessmentService constructs the assessment service.
func NewAssessmentService(assessments repository.AssessmentRepository, students repository.StudentRepository, activities repository.ActivityRepository, gate *WriteGate, reports ReportInvalidator, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		assessments: assessments,
		students:    students,
		activities:  activities,
		gate:        gate,
		reports:     reports,
		events:      events,
		validator:   validate,
		logger:      logger.With().Str("component", "assessment_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/sikori-api/internal/service/assessment"),
	}
}

func (s *assessmentService) List(ctx context.Context, req dto.AssessmentListRequest) ([]dto.AssessmentResponse, error) {
	filter := repository.AssessmentFilter{
		ActivityID:  strings.TrimSpace(req.ActivityID),
		StudentNISN: strings.TrimSpace(req.StudentNISN),
		Type:        models.AssessmentType(strings.ToUpper(strings.TrimSpace(req.Type))),
	}

	assessments, err := s.assessments.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AssessmentResponse, 0, len(assessments))
	for _, assessment := range assessments {
		responses = append(responses, dto.NewAssessmentResponse(assessment))
	}
	return responses, nil
}

// Upsert keeps exactly one row per (student, activity, type, criterion) and
// overwrites its score, checked flag and note with the supplied values.
func (s *assessmentService) Upsert(ctx context.Context, actor Actor, req dto.AssessmentUpsertRequest) (dto.AssessmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assessments.upsert", trace.WithAttributes(
		attribute.String("assessment.activity_id", req.ActivityID),
		attribute.String("assessment.type", req.Type),
	))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AssessmentResponse{}, err
	}

	assessment, err := assessmentFromRequest(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid_shape")
		return dto.AssessmentResponse{}, err
	}

	release, err := s.gate.EnterWrite()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "restore_in_progress")
		return dto.AssessmentResponse{}, err
	}
	defer release()

	if err := s.checkReferences(ctx, assessment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reference_failed")
		return dto.AssessmentResponse{}, err
	}

	stored, err := s.assessments.Upsert(ctx, &assessment)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			span.SetStatus(codes.Error, "reference_failed")
			return dto.AssessmentResponse{}, fmt.Errorf("%w: %v", ErrAssessmentReference, err)
		}
		span.SetStatus(codes.Error, "upsert_failed")
		s.logger.Error().Err(err).Str("student_nisn", assessment.StudentNISN).Str("activity_id", assessment.ActivityID).Msg("failed to upsert assessment")
		return dto.AssessmentResponse{}, err
	}

	span.SetAttributes(attribute.String("assessment.id", stored.ID))
	observability.AssessmentUpserts().WithLabelValues(string(stored.Type)).Inc()

	if s.reports != nil {
		s.reports.InvalidateActivity(ctx, stored.ActivityID)
	}

	response := dto.NewAssessmentResponse(stored)
	publishEvent(ctx, s.events, s.logger, EventAssessmentUpserted, map[string]interface{}{
		"assessment": response,
		"actorId":    actor.ID,
	})

	return response, nil
}

func (s *assessmentService) checkReferences(ctx context.Context, assessment models.Assessment) error {
	if _, err := s.students.GetByNISN(ctx, assessment.StudentNISN); err != nil {
		return referenceError(err, "student", assessment.StudentNISN)
	}
	if _, err := s.activities.GetByID(ctx, assessment.ActivityID); err != nil {
		return referenceError(err, "activity", assessment.ActivityID)
	}

	switch assessment.Type {
	case models.AssessmentSummative:
		aspect, err := s.activities.GetAspect(ctx, *assessment.AspectID)
		if err != nil {
			return referenceError(err, "aspect", *assessment.AspectID)
		}
		if aspect.ActivityID != assessment.ActivityID {
			return fmt.Errorf("%w: aspect %s belongs to another activity", ErrAssessmentReference, aspect.ID)
		}
	case models.AssessmentFormative:
		item, err := s.activities.GetItem(ctx, *assessment.ItemID)
		if err != nil {
			return referenceError(err, "item", *assessment.ItemID)
		}
		if item.ActivityID != assessment.ActivityID {
			return fmt.Errorf("%w: item %s belongs to another activity", ErrAssessmentReference, item.ID)
		}
	}

	return nil
}

func referenceError(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s not found", ErrAssessmentReference, kind, id)
	}
	return err
}

// assessmentFromRequest builds the row for an upsert request and rejects
// fields its type does not take.
func assessmentFromRequest(req dto.AssessmentUpsertRequest) (models.Assessment, error) {
	assessment := models.Assessment{
		ID:          uuid.NewString(),
		StudentNISN: req.Student(),
		ActivityID:  strings.TrimSpace(req.ActivityID),
		Type:        models.AssessmentType(req.Type),
		AspectID:    trimOptional(req.AspectID),
		ItemID:      trimOptional(req.ItemID),
		Checked:     req.Checked,
		Note:        req.Note,
	}
	if req.Score != nil {
		score := models.RubricScore(*req.Score)
		assessment.Score = &score
	}

	if err := checkAssessmentShape(assessment); err != nil {
		return models.Assessment{}, err
	}

	assessment.Note = cleanOptionalText(req.Note)
	return assessment, nil
}

// checkAssessmentShape enforces the per-type shape: summative rows carry an
// aspect and a score, formative rows an item with a checked flag and note,
// note rows only a note.
func checkAssessmentShape(a models.Assessment) error {
	switch a.Type {
	case models.AssessmentSummative:
		if a.AspectID == nil {
			return fmt.Errorf("%w: aspectId is required for SUMMATIVE", ErrInvalidAssessment)
		}
		if a.ItemID != nil || a.Checked != nil || a.Note != nil {
			return fmt.Errorf("%w: SUMMATIVE accepts only aspectId and score", ErrInvalidAssessment)
		}
	case models.AssessmentFormative:
		if a.ItemID == nil {
			return fmt.Errorf("%w: itemId is required for FORMATIVE", ErrInvalidAssessment)
		}
		if a.AspectID != nil || a.Score != nil {
			return fmt.Errorf("%w: FORMATIVE accepts only itemId, checked and note", ErrInvalidAssessment)
		}
	case models.AssessmentNote:
		if a.AspectID != nil || a.ItemID != nil || a.Score != nil || a.Checked != nil {
			return fmt.Errorf("%w: NOTE accepts only note", ErrInvalidAssessment)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAssessment, a.Type)
	}
	return nil
}
