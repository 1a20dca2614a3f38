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

// StudentService manages the student register.
type StudentService interface {
	List(ctx context.Context, req dto.StudentListRequest) ([]dto.StudentResponse, error)
	Classes(ctx context.Context) ([]string, error)
	Create(ctx context.Context, actor Actor, req dto.StudentCreateRequest) (dto.StudentResponse, error)
	BulkImport(ctx context.Context, actor Actor, req dto.StudentBulkRequest) (dto.StudentBulkResponse, error)
	Delete(ctx context.Context, actor Actor, nisn string) error
}

type studentService struct {
	repo      repository.StudentRepository
	gate      *WriteGate
	reports   ReportInvalidator
	audit     AuditRecorder
	events    EventPublisher
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo repository.StudentRepository, gate *WriteGate, reports ReportInvalidator, audit AuditRecorder, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		repo:      repo,
		gate:      gate,
		reports:   reports,
		audit:     audit,
		events:    events,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context, req dto.StudentListRequest) ([]dto.StudentResponse, error) {
	filter := repository.StudentFilter{Search: strings.TrimSpace(req.Search)}
	if class := normalizeClassFilter(req.Class); class != "all" {
		filter.Class = class
	}

	students, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, dto.NewStudentResponse(student))
	}
	return responses, nil
}

func (s *studentService) Classes(ctx context.Context) ([]string, error) {
	classes, err := s.repo.Classes(ctx)
	if err != nil {
		return nil, err
	}
	if classes == nil {
		classes = []string{}
	}
	return classes, nil
}

func (s *studentService) Create(ctx context.Context, actor Actor, req dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	release, err := s.gate.EnterWrite()
	if err != nil {
		return dto.StudentResponse{}, err
	}
	defer release()

	student := studentFromRequest(req)
	if _, err := s.repo.GetByNISN(ctx, student.NISN); err == nil {
		return dto.StudentResponse{}, ErrStudentExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.StudentResponse{}, err
	}

	if err := s.repo.Create(ctx, &student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StudentResponse{}, ErrStudentExists
		}
		s.logger.Error().Err(err).Str("nisn", student.NISN).Msg("failed to create student")
		return dto.StudentResponse{}, err
	}

	s.invalidate(ctx)
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "student.created",
		EntityType: "student",
		EntityID:   student.NISN,
		Metadata:   map[string]interface{}{"class": student.Class},
	})

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) BulkImport(ctx context.Context, actor Actor, req dto.StudentBulkRequest) (dto.StudentBulkResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentBulkResponse{}, err
	}

	release, err := s.gate.EnterWrite()
	if err != nil {
		return dto.StudentBulkResponse{}, err
	}
	defer release()

	// Later rows win when a spreadsheet repeats a NISN.
	index := make(map[string]int, len(req.Students))
	students := make([]models.Student, 0, len(req.Students))
	for _, row := range req.Students {
		student := studentFromRequest(row)
		if pos, seen := index[student.NISN]; seen {
			students[pos] = student
			continue
		}
		index[student.NISN] = len(students)
		students = append(students, student)
	}

	affected, err := s.repo.UpsertBatch(ctx, students)
	if err != nil {
		s.logger.Error().Err(err).Int("rows", len(students)).Msg("failed to import students")
		return dto.StudentBulkResponse{}, err
	}

	s.invalidate(ctx)
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     EventStudentsImported,
		EntityType: "student",
		Metadata:   map[string]interface{}{"rows": len(students), "affected": affected},
	})
	publishEvent(ctx, s.events, s.logger, EventStudentsImported, map[string]interface{}{"rows": len(students)})

	return dto.StudentBulkResponse{Imported: len(students), Affected: affected}, nil
}

func (s *studentService) Delete(ctx context.Context, actor Actor, nisn string) error {
	nisn = strings.TrimSpace(nisn)
	if nisn == "" {
		return ErrStudentNotFound
	}

	release, err := s.gate.EnterWrite()
	if err != nil {
		return err
	}
	defer release()

	if err := s.repo.Delete(ctx, nisn); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	s.invalidate(ctx)
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     EventStudentDeleted,
		EntityType: "student",
		EntityID:   nisn,
	})
	publishEvent(ctx, s.events, s.logger, EventStudentDeleted, map[string]interface{}{"nisn": nisn})

	return nil
}

func (s *studentService) invalidate(ctx context.Context) {
	if s.reports != nil {
		s.reports.InvalidateAll(ctx)
	}
}

func studentFromRequest(req dto.StudentCreateRequest) models.Student {
	return models.Student{
		NISN:  strings.TrimSpace(req.NISN),
		NIS:   strings.TrimSpace(req.NIS),
		Name:  cleanText(req.Name),
		Class: strings.TrimSpace(req.Class),
	}
}
