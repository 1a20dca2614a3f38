package service

import (
	"context"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/sikori-api/internal/database"
	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/models"
	"github.com/noah-isme/sikori-api/internal/repository"
)

var superAdmin = Actor{ID: 1, Role: models.RoleSuperAdmin, Username: "superadmin"}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type recordedEvent struct {
	name    string
	payload interface{}
}

type memoryPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *memoryPublisher) Publish(ctx context.Context, name string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{name: name, payload: payload})
	return nil
}

func (p *memoryPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, event := range p.events {
		names = append(names, event.name)
	}
	return names
}

type countingInvalidator struct {
	activities []string
	all        int
}

func (c *countingInvalidator) InvalidateActivity(ctx context.Context, activityID string) {
	c.activities = append(c.activities, activityID)
}

func (c *countingInvalidator) InvalidateAll(ctx context.Context) {
	c.all++
}

// fixture wires every service against one in-memory database.
type fixture struct {
	db          *gorm.DB
	gate        *WriteGate
	events      *memoryPublisher
	reports     *countingInvalidator
	audit       AuditService
	students    StudentService
	activities  ActivityService
	assessments AssessmentService
	users       UserService
	backup      BackupService
	backupRepo  repository.BackupRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	logger := testLogger()
	validate := testValidator()

	f := &fixture{
		db:      db,
		gate:    NewWriteGate(),
		events:  &memoryPublisher{},
		reports: &countingInvalidator{},
	}

	studentRepo := repository.NewStudentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	f.backupRepo = repository.NewBackupRepository(db)

	f.audit = NewAuditService(repository.NewAuditLogRepository(db), logger)
	f.students = NewStudentService(studentRepo, f.gate, f.reports, f.audit, f.events, validate, logger)
	f.activities = NewActivityService(activityRepo, f.gate, f.reports, f.audit, f.events, validate, logger)
	f.assessments = NewAssessmentService(assessmentRepo, studentRepo, activityRepo, f.gate, f.reports, f.events, validate, logger)
	f.users = NewUserService(userRepo, f.gate, f.audit, validate, logger)

	backup, err := NewBackupService(f.backupRepo, f.gate, f.reports, f.audit, f.events, BackupConfig{}, logger)
	require.NoError(t, err)
	f.backup = backup

	return f
}

func (f *fixture) seedSuperAdmin(t *testing.T) models.User {
	t.Helper()
	user := models.User{Username: "superadmin", FullName: "Super Administrator", Role: models.RoleSuperAdmin}
	require.NoError(t, user.SetPassword("rahasia123"))
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

func (f *fixture) seedStudent(t *testing.T, nisn, name, class string) dto.StudentResponse {
	t.Helper()
	student, err := f.students.Create(context.Background(), superAdmin, dto.StudentCreateRequest{
		NISN:  nisn,
		NIS:   "L-" + nisn,
		Name:  name,
		Class: class,
	})
	require.NoError(t, err)
	return student
}

func (f *fixture) seedPramuka(t *testing.T) dto.ActivityResponse {
	t.Helper()
	activity, err := f.activities.Create(context.Background(), superAdmin, dto.ActivityCreateRequest{
		Name:          "Pramuka",
		TargetClasses: []string{"X-A"},
		SummativeAspects: []dto.SummativeAspectRequest{
			{Name: "Kedisiplinan", Dimension: string(models.DimensionIndependent)},
		},
		FormativeItems: []dto.FormativeItemRequest{
			{Name: "Membawa perlengkapan"},
		},
	})
	require.NoError(t, err)
	return activity
}

func strPtr(v string) *string {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}
