package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/sikori-api/internal/database"
	"github.com/noah-isme/sikori-api/internal/models"
)

const restoreBatchSize = 200

// Snapshot holds every row of the six backed-up collections. Activities are
// flat; their aspects and items travel in their own slices.
type Snapshot struct {
	Users            []models.User
	Students         []models.Student
	Activities       []models.Activity
	SummativeAspects []models.SummativeAspect
	FormativeItems   []models.FormativeItem
	Assessments      []models.Assessment
}

// BackupRepository reads and replaces the whole domain store.
type BackupRepository interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	ReplaceAll(ctx context.Context, snapshot Snapshot) error
	ResumeIntegrity(ctx context.Context) error
	Counts(ctx context.Context) (map[string]int64, error)
}

type backupRepository struct {
	db        *gorm.DB
	integrity database.IntegrityToggle
}

// NewBackupRepository constructs the backup repository.
func NewBackupRepository(db *gorm.DB) BackupRepository {
	return &backupRepository{db: db, integrity: database.IntegrityFor(db)}
}

func (r *backupRepository) Snapshot(ctx context.Context) (Snapshot, error) {
	var snapshot Snapshot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("id ASC").Find(&snapshot.Users).Error; err != nil {
			return err
		}
		if err := tx.Order("nisn ASC").Find(&snapshot.Students).Error; err != nil {
			return err
		}
		if err := tx.Order("id ASC").Find(&snapshot.Activities).Error; err != nil {
			return err
		}
		if err := tx.Order("id ASC").Find(&snapshot.SummativeAspects).Error; err != nil {
			return err
		}
		if err := tx.Order("id ASC").Find(&snapshot.FormativeItems).Error; err != nil {
			return err
		}
		return tx.Order("id ASC").Find(&snapshot.Assessments).Error
	}, r.snapshotOptions())
	if err != nil {
		return Snapshot{}, err
	}
	return snapshot, nil
}

// ReplaceAll swaps the contents of all six collections inside one
// transaction. Users without a password hash keep the hash currently stored
// under the same username.
func (r *backupRepository) ReplaceAll(ctx context.Context, snapshot Snapshot) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := r.replace(tx, snapshot); err != nil {
		// MySQL keeps FOREIGN_KEY_CHECKS on the connection after a rollback,
		// so reset it while tx still owns that connection.
		_ = r.integrity.Resume(tx)
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (r *backupRepository) replace(tx *gorm.DB, snapshot Snapshot) error {
	if err := r.integrity.Suspend(tx); err != nil {
		return err
	}

	hashes, err := currentPasswordHashes(tx)
	if err != nil {
		return err
	}

	global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&models.Assessment{},
		&models.FormativeItem{},
		&models.SummativeAspect{},
		&models.Activity{},
		&models.Student{},
		&models.User{},
	} {
		if err := global.Delete(model).Error; err != nil {
			return err
		}
	}

	for i := range snapshot.Users {
		if snapshot.Users[i].PasswordHash == "" {
			snapshot.Users[i].PasswordHash = hashes[snapshot.Users[i].Username]
		}
	}
	for i := range snapshot.Assessments {
		item := &snapshot.Assessments[i]
		item.CriterionKey = models.CriterionKeyFor(item.Type, item.AspectID, item.ItemID)
	}

	if err := createAll(tx, snapshot.Users); err != nil {
		return err
	}
	if err := createAll(tx, snapshot.Students); err != nil {
		return err
	}
	if err := createAll(tx, snapshot.Activities); err != nil {
		return err
	}
	if err := createAll(tx, snapshot.SummativeAspects); err != nil {
		return err
	}
	if err := createAll(tx, snapshot.FormativeItems); err != nil {
		return err
	}
	if err := createAll(tx, snapshot.Assessments); err != nil {
		return err
	}

	if err := database.ResetSequence(tx, "users", "id"); err != nil {
		return err
	}

	return r.integrity.Resume(tx)
}

// ResumeIntegrity re-enables enforcement on a pooled connection once a
// failed swap has been rolled back.
func (r *backupRepository) ResumeIntegrity(ctx context.Context) error {
	return r.integrity.ResumeSession(ctx, r.db)
}

func (r *backupRepository) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, 6)
	tables := map[string]interface{}{
		"users":            &models.User{},
		"students":         &models.Student{},
		"activities":       &models.Activity{},
		"summativeAspects": &models.SummativeAspect{},
		"formativeItems":   &models.FormativeItem{},
		"assessments":      &models.Assessment{},
	}
	for name, model := range tables {
		var total int64
		if err := r.db.WithContext(ctx).Model(model).Count(&total).Error; err != nil {
			return nil, err
		}
		counts[name] = total
	}
	return counts, nil
}

func (r *backupRepository) snapshotOptions() *sql.TxOptions {
	if r.db.Dialector.Name() == database.DriverSQLite {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}

func currentPasswordHashes(tx *gorm.DB) (map[string]string, error) {
	var users []models.User
	if err := tx.Select("username", "password_hash").Find(&users).Error; err != nil {
		return nil, err
	}
	hashes := make(map[string]string, len(users))
	for _, user := range users {
		hashes[user.Username] = user.PasswordHash
	}
	return hashes, nil
}

func createAll[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).CreateInBatches(&rows, restoreBatchSize).Error
}
