package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/sikori-api/internal/models"
)

// StudentFilter narrows student listings.
type StudentFilter struct {
	Class  string
	Search string
}

// StudentRepository provides access to student records.
type StudentRepository interface {
	List(ctx context.Context, filter StudentFilter) ([]models.Student, error)
	Classes(ctx context.Context) ([]string, error)
	GetByNISN(ctx context.Context, nisn string) (models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	UpsertBatch(ctx context.Context, students []models.Student) (int64, error)
	Delete(ctx context.Context, nisn string) error
	Count(ctx context.Context) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{})

	if filter.Class != "" {
		query = query.Where("class = ?", filter.Class)
	}

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR nisn LIKE ?", like, like)
	}

	var students []models.Student
	if err := query.Order("name ASC").Order("nisn ASC").Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) Classes(ctx context.Context) ([]string, error) {
	var classes []string
	err := r.db.WithContext(ctx).Model(&models.Student{}).
		Distinct("class").
		Order("class ASC").
		Pluck("class", &classes).Error
	if err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *studentRepository) GetByNISN(ctx context.Context, nisn string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("nisn = ?", nisn).First(&student).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) UpsertBatch(ctx context.Context, students []models.Student) (int64, error) {
	if len(students) == 0 {
		return 0, nil
	}

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "nisn"}},
		DoUpdates: clause.AssignmentColumns([]string{"nis", "name", "class", "updated_at"}),
	})

	result := tx.CreateInBatches(&students, 200)
	return result.RowsAffected, result.Error
}

// Delete removes the student and every assessment recorded for them.
func (r *studentRepository) Delete(ctx context.Context, nisn string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_nisn = ?", nisn).Delete(&models.Assessment{}).Error; err != nil {
			return err
		}

		result := tx.Where("nisn = ?", nisn).Delete(&models.Student{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}

func (r *studentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).Count(&total).Error
	return total, err
}
