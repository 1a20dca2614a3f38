package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/sikori-api/internal/models"
)

// ActivityRepository persists activities together with their rubric and checklist.
type ActivityRepository interface {
	List(ctx context.Context) ([]models.Activity, error)
	GetByID(ctx context.Context, id string) (models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	GetAspect(ctx context.Context, id string) (models.SummativeAspect, error)
	GetItem(ctx context.Context, id string) (models.FormativeItem, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository constructs the activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("SummativeAspects", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Preload("FormativeItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		})
}

func (r *activityRepository) List(ctx context.Context) ([]models.Activity, error) {
	var activities []models.Activity
	if err := r.withChildren(ctx).Order("created_at ASC").Order("id ASC").Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *activityRepository) GetByID(ctx context.Context, id string) (models.Activity, error) {
	var activity models.Activity
	if err := r.withChildren(ctx).Where("id = ?", id).First(&activity).Error; err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}

// Create stores the activity and its children in one transaction.
func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(activity).Error; err != nil {
			return err
		}

		for i := range activity.SummativeAspects {
			activity.SummativeAspects[i].ActivityID = activity.ID
		}
		if len(activity.SummativeAspects) > 0 {
			if err := tx.Create(&activity.SummativeAspects).Error; err != nil {
				return err
			}
		}

		for i := range activity.FormativeItems {
			activity.FormativeItems[i].ActivityID = activity.ID
		}
		if len(activity.FormativeItems) > 0 {
			if err := tx.Create(&activity.FormativeItems).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes the activity, its aspects and items, and every assessment
// recorded against it.
func (r *activityRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", id).Delete(&models.Assessment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id = ?", id).Delete(&models.SummativeAspect{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id = ?", id).Delete(&models.FormativeItem{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Activity{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}

func (r *activityRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Activity{}).Count(&total).Error
	return total, err
}

func (r *activityRepository) GetAspect(ctx context.Context, id string) (models.SummativeAspect, error) {
	var aspect models.SummativeAspect
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&aspect).Error; err != nil {
		return models.SummativeAspect{}, err
	}
	return aspect, nil
}

func (r *activityRepository) GetItem(ctx context.Context, id string) (models.FormativeItem, error) {
	var item models.FormativeItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return models.FormativeItem{}, err
	}
	return item, nil
}
