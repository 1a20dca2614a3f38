package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/models"
	"github.com/noah-isme/sikori-api/internal/observability"
	"github.com/noah-isme/sikori-api/internal/repository"
)

// MaxBackupSize bounds restore payloads.
const MaxBackupSize int64 = 64 << 20

const (
	backupSchemaURL  = "backup.schema.json"
	publicExporter   = "public"
	bcryptHashPrefix = "$2"
	backupTimeLayout = "2006-01-02T15:04:05.000Z"
	backupFilePrefix = "sikori_backup_"
	backupFileSuffix = ".json"
)

//go:embed schema/backup.schema.json
var backupSchemaJSON []byte

// BackupService exports and restores the whole domain store.
type BackupService interface {
	Export(ctx context.Context, exportedBy string) (dto.BackupDocument, error)
	ExportPublic(ctx context.Context) (dto.BackupDocument, error)
	Restore(ctx context.Context, actor Actor, raw []byte) (dto.RestoreResponse, error)
}

// BackupConfig toggles optional backup behaviour.
type BackupConfig struct {
	PublicEnabled bool
}

type backupService struct {
	repo    repository.BackupRepository
	gate    *WriteGate
	reports ReportInvalidator
	audit   AuditRecorder
	events  EventPublisher
	schema  *jsonschema.Schema
	cfg     BackupConfig
	logger  zerolog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewBackupService constructs the backup service. It fails only when the
// embedded document schema does not compile.
func NewBackupService(repo repository.BackupRepository, gate *WriteGate, reports ReportInvalidator, audit AuditRecorder, events EventPublisher, cfg BackupConfig, logger zerolog.Logger) (BackupService, error) {
	schema, err := compileBackupSchema()
	if err != nil {
		return nil, fmt.Errorf("compile backup schema: %w", err)
	}

	return &backupService{
		repo:    repo,
		gate:    gate,
		reports: reports,
		audit:   audit,
		events:  events,
		schema:  schema,
		cfg:     cfg,
		logger:  logger.With().Str("component", "backup_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/sikori-api/internal/service/backup"),
		now:     time.Now,
	}, nil
}

func compileBackupSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(backupSchemaURL, bytes.NewReader(backupSchemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(backupSchemaURL)
}

// BackupFilename names an export taken at t.
func BackupFilename(t time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(t.UTC().Format(backupTimeLayout))
	return backupFilePrefix + stamp + backupFileSuffix
}

// ReadBackupUpload reads a multipart upload and rejects anything that is not
// JSON or plain text.
func ReadBackupUpload(header *multipart.FileHeader) ([]byte, error) {
	if header == nil {
		return nil, fmt.Errorf("%w: file is required", ErrInvalidBackup)
	}
	if header.Size > MaxBackupSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidBackup, MaxBackupSize)
	}

	handle, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer handle.Close()

	data, err := io.ReadAll(io.LimitReader(handle, MaxBackupSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxBackupSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidBackup, MaxBackupSize)
	}

	if !isTextual(mimetype.Detect(data)) {
		return nil, fmt.Errorf("%w: file must be JSON", ErrInvalidBackup)
	}

	return data, nil
}

func isTextual(detected *mimetype.MIME) bool {
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("application/json") || m.Is("text/plain") {
			return true
		}
	}
	return false
}

func (s *backupService) Export(ctx context.Context, exportedBy string) (dto.BackupDocument, error) {
	ctx, span := s.tracer.Start(ctx, "backup.export", trace.WithAttributes(attribute.String("backup.exported_by", exportedBy)))
	defer span.End()

	snapshot, err := s.repo.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot_failed")
		observability.BackupOperations().WithLabelValues("export", "failed").Inc()
		return dto.BackupDocument{}, err
	}

	doc := documentFromSnapshot(snapshot)
	doc.Metadata = dto.BackupMetadata{
		Version:    dto.BackupFormatVersion,
		Timestamp:  s.now().UTC(),
		ExportedBy: exportedBy,
	}

	span.SetAttributes(
		attribute.Int("backup.users", len(doc.Data.Users)),
		attribute.Int("backup.students", len(doc.Data.Students)),
		attribute.Int("backup.assessments", len(doc.Data.Assessments)),
	)
	observability.BackupOperations().WithLabelValues("export", "success").Inc()
	s.logger.Info().Str("exported_by", exportedBy).Int("assessments", len(doc.Data.Assessments)).Msg("backup exported")

	return doc, nil
}

func (s *backupService) ExportPublic(ctx context.Context) (dto.BackupDocument, error) {
	if !s.cfg.PublicEnabled {
		return dto.BackupDocument{}, ErrPublicBackupDisabled
	}
	return s.Export(ctx, publicExporter)
}

func (s *backupService) Restore(ctx context.Context, actor Actor, raw []byte) (dto.RestoreResponse, error) {
	ctx, span := s.tracer.Start(ctx, "backup.restore", trace.WithAttributes(attribute.String("backup.actor", actor.Username)))
	defer span.End()

	doc, err := s.decode(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid_document")
		observability.BackupOperations().WithLabelValues("restore", "rejected").Inc()
		return dto.RestoreResponse{}, err
	}

	release, err := s.gate.EnterRestore()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "restore_conflict")
		observability.BackupOperations().WithLabelValues("restore", "conflict").Inc()
		return dto.RestoreResponse{}, err
	}
	defer release()

	snapshot, skipped := snapshotFromDocument(doc)

	if err := s.repo.ReplaceAll(ctx, snapshot); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replace_failed")
		observability.BackupOperations().WithLabelValues("restore", "failed").Inc()
		if resumeErr := s.repo.ResumeIntegrity(context.WithoutCancel(ctx)); resumeErr != nil {
			s.logger.Warn().Err(resumeErr).Msg("failed to resume referential integrity after rollback")
		}
		s.logger.Error().Err(err).Msg("restore rolled back")
		return dto.RestoreResponse{}, err
	}

	counts, err := s.repo.Counts(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to count restored rows")
		counts = map[string]int64{}
	}

	if s.reports != nil {
		s.reports.InvalidateAll(ctx)
	}

	metadata := map[string]interface{}{
		"version":    doc.Metadata.Version,
		"exportedBy": doc.Metadata.ExportedBy,
		"counts":     counts,
	}
	if len(skipped) > 0 {
		metadata["skipped"] = skipped
	}
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     EventBackupRestored,
		EntityType: "backup",
		Metadata:   metadata,
	})
	publishEvent(ctx, s.events, s.logger, EventBackupRestored, map[string]interface{}{
		"restoredBy": actor.Username,
		"counts":     counts,
	})

	observability.BackupOperations().WithLabelValues("restore", "success").Inc()
	s.logger.Info().Str("actor", actor.Username).Interface("counts", counts).Msg("backup restored")

	return dto.RestoreResponse{
		RestoredAt: s.now().UTC(),
		Counts:     counts,
		Skipped:    skipped,
	}, nil
}

func (s *backupService) decode(raw []byte) (dto.BackupDocument, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return dto.BackupDocument{}, fmt.Errorf("%w: empty document", ErrInvalidBackup)
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return dto.BackupDocument{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if err := s.schema.Validate(generic); err != nil {
		return dto.BackupDocument{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	var doc dto.BackupDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return dto.BackupDocument{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	if err := checkDocument(doc); err != nil {
		return dto.BackupDocument{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	return doc, nil
}

// checkDocument rejects documents that would lock every administrator out or
// that carry duplicate primary keys.
func checkDocument(doc dto.BackupDocument) error {
	superAdmins := 0
	usernames := make(map[string]struct{}, len(doc.Data.Users))
	userIDs := make(map[uint]struct{}, len(doc.Data.Users))
	for _, user := range doc.Data.Users {
		if user.Role == models.RoleSuperAdmin {
			superAdmins++
		}
		if _, dup := usernames[user.Username]; dup {
			return fmt.Errorf("duplicate username %q", user.Username)
		}
		usernames[user.Username] = struct{}{}
		if user.ID > 0 {
			if _, dup := userIDs[user.ID]; dup {
				return fmt.Errorf("duplicate user id %d", user.ID)
			}
			userIDs[user.ID] = struct{}{}
		}
	}
	if superAdmins == 0 {
		return fmt.Errorf("document has no %s user", models.RoleSuperAdmin)
	}

	if err := uniqueKeys("students", doc.Data.Students, func(s models.Student) string { return s.NISN }); err != nil {
		return err
	}
	if err := uniqueKeys("activities", doc.Data.Activities, func(a dto.BackupActivity) string { return a.ID }); err != nil {
		return err
	}
	if err := uniqueKeys("summativeAspects", doc.Data.SummativeAspects, func(a models.SummativeAspect) string { return a.ID }); err != nil {
		return err
	}
	if err := uniqueKeys("formativeItems", doc.Data.FormativeItems, func(i models.FormativeItem) string { return i.ID }); err != nil {
		return err
	}
	return uniqueKeys("assessments", doc.Data.Assessments, func(a models.Assessment) string { return a.ID })
}

func uniqueKeys[T any](collection string, rows []T, key func(T) string) error {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		k := key(row)
		if _, dup := seen[k]; dup {
			return fmt.Errorf("duplicate %s key %q", collection, k)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func documentFromSnapshot(snapshot repository.Snapshot) dto.BackupDocument {
	data := dto.BackupData{
		Users:            make([]dto.BackupUser, 0, len(snapshot.Users)),
		Students:         nonNil(snapshot.Students),
		Activities:       make([]dto.BackupActivity, 0, len(snapshot.Activities)),
		SummativeAspects: nonNil(snapshot.SummativeAspects),
		FormativeItems:   nonNil(snapshot.FormativeItems),
		Assessments:      nonNil(snapshot.Assessments),
	}

	for _, user := range snapshot.Users {
		data.Users = append(data.Users, dto.BackupUser{
			ID:        user.ID,
			Username:  user.Username,
			FullName:  user.FullName,
			Role:      user.Role,
			NIP:       user.NIP,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		})
	}

	for _, activity := range snapshot.Activities {
		targets := make([]string, 0, len(activity.TargetClasses))
		targets = append(targets, activity.TargetClasses...)
		data.Activities = append(data.Activities, dto.BackupActivity{
			ID:            activity.ID,
			Name:          activity.Name,
			TargetClasses: targets,
			CreatedAt:     activity.CreatedAt,
			UpdatedAt:     activity.UpdatedAt,
		})
	}

	return dto.BackupDocument{Data: data}
}

// snapshotFromDocument converts a validated document into rows. Rows whose
// parents are absent from the document are dropped, and of several
// assessments sharing one natural key only the most recently updated is kept.
func snapshotFromDocument(doc dto.BackupDocument) (repository.Snapshot, map[string]int) {
	skipped := map[string]int{}
	snapshot := repository.Snapshot{
		Users:    make([]models.User, 0, len(doc.Data.Users)),
		Students: nonNil(doc.Data.Students),
	}

	for _, user := range doc.Data.Users {
		hash := user.PasswordHash
		if hash == "" && strings.HasPrefix(user.Password, bcryptHashPrefix) {
			hash = user.Password
		}
		snapshot.Users = append(snapshot.Users, models.User{
			ID:           user.ID,
			Username:     user.Username,
			PasswordHash: hash,
			FullName:     user.FullName,
			Role:         user.Role,
			NIP:          user.NIP,
			CreatedAt:    user.CreatedAt,
			UpdatedAt:    user.UpdatedAt,
		})
	}

	students := make(map[string]struct{}, len(doc.Data.Students))
	for _, student := range doc.Data.Students {
		students[student.NISN] = struct{}{}
	}

	activities := make(map[string]struct{}, len(doc.Data.Activities))
	for _, activity := range doc.Data.Activities {
		activities[activity.ID] = struct{}{}
		snapshot.Activities = append(snapshot.Activities, models.Activity{
			ID:            activity.ID,
			Name:          activity.Name,
			TargetClasses: activity.TargetClasses,
			CreatedAt:     activity.CreatedAt,
			UpdatedAt:     activity.UpdatedAt,
		})
	}

	aspectOwner := make(map[string]string, len(doc.Data.SummativeAspects))
	for _, aspect := range doc.Data.SummativeAspects {
		if _, ok := activities[aspect.ActivityID]; !ok {
			skipped["summativeAspects"]++
			continue
		}
		aspectOwner[aspect.ID] = aspect.ActivityID
		snapshot.SummativeAspects = append(snapshot.SummativeAspects, aspect)
	}

	itemOwner := make(map[string]string, len(doc.Data.FormativeItems))
	for _, item := range doc.Data.FormativeItems {
		if _, ok := activities[item.ActivityID]; !ok {
			skipped["formativeItems"]++
			continue
		}
		itemOwner[item.ID] = item.ActivityID
		snapshot.FormativeItems = append(snapshot.FormativeItems, item)
	}

	latest := make(map[string]int)
	for _, assessment := range doc.Data.Assessments {
		assessment.AspectID = trimOptional(assessment.AspectID)
		assessment.ItemID = trimOptional(assessment.ItemID)
		if checkAssessmentShape(assessment) != nil || !assessmentResolves(assessment, students, activities, aspectOwner, itemOwner) {
			skipped["assessments"]++
			continue
		}

		assessment.CriterionKey = models.CriterionKeyFor(assessment.Type, assessment.AspectID, assessment.ItemID)
		key := strings.Join([]string{assessment.StudentNISN, assessment.ActivityID, string(assessment.Type), assessment.CriterionKey}, "\x00")
		if idx, dup := latest[key]; dup {
			skipped["assessments"]++
			if assessment.UpdatedAt.After(snapshot.Assessments[idx].UpdatedAt) {
				snapshot.Assessments[idx] = assessment
			}
			continue
		}
		latest[key] = len(snapshot.Assessments)
		snapshot.Assessments = append(snapshot.Assessments, assessment)
	}

	sort.SliceStable(snapshot.Assessments, func(i, j int) bool {
		return snapshot.Assessments[i].ID < snapshot.Assessments[j].ID
	})

	if len(skipped) == 0 {
		skipped = nil
	}
	return snapshot, skipped
}

func assessmentResolves(a models.Assessment, students, activities map[string]struct{}, aspectOwner, itemOwner map[string]string) bool {
	if _, ok := students[a.StudentNISN]; !ok {
		return false
	}
	if _, ok := activities[a.ActivityID]; !ok {
		return false
	}

	switch a.Type {
	case models.AssessmentSummative:
		return a.AspectID != nil && aspectOwner[*a.AspectID] == a.ActivityID
	case models.AssessmentFormative:
		return a.ItemID != nil && itemOwner[*a.ItemID] == a.ActivityID
	case models.AssessmentNote:
		return true
	default:
		return false
	}
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
