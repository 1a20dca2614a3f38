package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/sikori-api/internal/models"
)

// AssessmentFilter narrows assessment listings.
type AssessmentFilter struct {
	ActivityID  string
	StudentNISN string
	Type        models.AssessmentType
}

// AssessmentRepository persists assessment facts.
type AssessmentRepository interface {
	List(ctx context.Context, filter AssessmentFilter) ([]models.Assessment, error)
	Upsert(ctx context.Context, assessment *models.Assessment) (models.Assessment, error)
	GetByKey(ctx context.Context, studentNISN, activityID string, kind models.AssessmentType, criterionKey string) (models.Assessment, error)
	CountAssessedStudents(ctx context.Context) (int64, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository constructs the assessment repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) List(ctx context.Context, filter AssessmentFilter) ([]models.Assessment, error) {
	query := r.db.WithContext(ctx).Model(&models.Assessment{})

	if filter.ActivityID != "" {
		query = query.Where("activity_id = ?", filter.ActivityID)
	}
	if filter.StudentNISN != "" {
		query = query.Where("student_nisn = ?", filter.StudentNISN)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var assessments []models.Assessment
	if err := query.Order("created_at ASC").Order("id ASC").Find(&assessments).Error; err != nil {
		return nil, err
	}
	return assessments, nil
}

// Upsert inserts the row or, when the natural key already exists, overwrites
// its score, checked flag and note. The stored row is returned.
func (r *assessmentRepository) Upsert(ctx context.Context, assessment *models.Assessment) (models.Assessment, error) {
	assessment.CriterionKey = models.CriterionKeyFor(assessment.Type, assessment.AspectID, assessment.ItemID)

	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "student_nisn"},
				{Name: "activity_id"},
				{Name: "type"},
				{Name: "criterion_key"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"score", "checked", "note", "updated_at"}),
		}).
		Create(assessment).Error
	if err != nil {
		return models.Assessment{}, err
	}

	return r.GetByKey(ctx, assessment.StudentNISN, assessment.ActivityID, assessment.Type, assessment.CriterionKey)
}

func (r *assessmentRepository) GetByKey(ctx context.Context, studentNISN, activityID string, kind models.AssessmentType, criterionKey string) (models.Assessment, error) {
	var assessment models.Assessment
	err := r.db.WithContext(ctx).
		Where("student_nisn = ? AND activity_id = ? AND type = ? AND criterion_key = ?", studentNISN, activityID, kind, criterionKey).
		First(&assessment).Error
	if err != nil {
		return models.Assessment{}, err
	}
	return assessment, nil
}

func (r *assessmentRepository) CountAssessedStudents(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Assessment{}).
		Distinct("student_nisn").
		Count(&total).Error
	return total, err
}
