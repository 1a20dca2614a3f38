package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/sikori-api/internal/models"
)

func TestStudentRepositoryListFiltersAndSorts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Student{NISN: "3", Name: "Citra", Class: "X-B"}))
	require.NoError(t, repo.Create(ctx, &models.Student{NISN: "1", Name: "Budi", Class: "X-A"}))
	require.NoError(t, repo.Create(ctx, &models.Student{NISN: "2", Name: "Ahmad", Class: "X-A"}))

	students, err := repo.List(ctx, StudentFilter{})
	require.NoError(t, err)
	require.Len(t, students, 3)
	require.Equal(t, "Ahmad", students[0].Name, "expected alphabetical order")

	students, err = repo.List(ctx, StudentFilter{Class: "X-A"})
	require.NoError(t, err)
	require.Len(t, students, 2)

	classes, err := repo.Classes(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"X-A", "X-B"}, classes)
}

func TestStudentRepositoryUpsertBatchUpdatesExisting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Student{NISN: "1001", Name: "Ahmad", Class: "X-A"}))

	_, err := repo.UpsertBatch(ctx, []models.Student{
		{NISN: "1001", NIS: "77", Name: "Ahmad Fauzi", Class: "XI-A"},
		{NISN: "1002", Name: "Siti", Class: "X-A"},
	})
	require.NoError(t, err)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	updated, err := repo.GetByNISN(ctx, "1001")
	require.NoError(t, err)
	require.Equal(t, "Ahmad Fauzi", updated.Name)
	require.Equal(t, "XI-A", updated.Class)
	require.Equal(t, "77", updated.NIS)
}

func TestStudentRepositoryDeleteRemovesAssessments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()
	activity := seedActivity(t, db)

	require.NoError(t, repo.Create(ctx, &models.Student{NISN: "1001", Name: "Ahmad", Class: "X-A"}))
	_, err := NewAssessmentRepository(db).Upsert(ctx, &models.Assessment{
		ID:          "a-1",
		StudentNISN: "1001",
		ActivityID:  activity.ID,
		Type:        models.AssessmentNote,
		Note:        strPtr("rajin"),
	})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "1001"))

	var remaining int64
	require.NoError(t, db.Model(&models.Assessment{}).Count(&remaining).Error)
	require.Zero(t, remaining)

	require.ErrorIs(t, repo.Delete(ctx, "1001"), gorm.ErrRecordNotFound)
}
