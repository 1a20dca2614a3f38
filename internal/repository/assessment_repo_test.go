package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sikori-api/internal/models"
)

func TestAssessmentRepositoryUpsertKeepsOneRowPerKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssessmentRepository(db)
	ctx := context.Background()
	activity := seedActivity(t, db)
	aspectID := activity.SummativeAspects[0].ID

	first, err := repo.Upsert(ctx, &models.Assessment{
		ID:          "first",
		StudentNISN: "1001",
		ActivityID:  activity.ID,
		Type:        models.AssessmentSummative,
		AspectID:    &aspectID,
		Score:       scorePtr(models.ScoreGood),
	})
	require.NoError(t, err)
	require.Equal(t, models.ScoreGood, *first.Score)

	second, err := repo.Upsert(ctx, &models.Assessment{
		ID:          "second",
		StudentNISN: "1001",
		ActivityID:  activity.ID,
		Type:        models.AssessmentSummative,
		AspectID:    &aspectID,
		Score:       scorePtr(models.ScoreVeryGood),
	})
	require.NoError(t, err)
	require.Equal(t, "first", second.ID)
	require.Equal(t, models.ScoreVeryGood, *second.Score)

	rows, err := repo.List(ctx, AssessmentFilter{ActivityID: activity.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestAssessmentRepositoryNoteKeyIsPerActivity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssessmentRepository(db)
	ctx := context.Background()
	activity := seedActivity(t, db)

	_, err := repo.Upsert(ctx, &models.Assessment{ID: "n1", StudentNISN: "1001", ActivityID: activity.ID, Type: models.AssessmentNote, Note: strPtr("awal")})
	require.NoError(t, err)
	note, err := repo.Upsert(ctx, &models.Assessment{ID: "n2", StudentNISN: "1001", ActivityID: activity.ID, Type: models.AssessmentNote, Note: strPtr("akhir")})
	require.NoError(t, err)
	require.Equal(t, "akhir", *note.Note)

	itemID := activity.FormativeItems[0].ID
	_, err = repo.Upsert(ctx, &models.Assessment{ID: "f1", StudentNISN: "1001", ActivityID: activity.ID, Type: models.AssessmentFormative, ItemID: &itemID})
	require.NoError(t, err)

	rows, err := repo.List(ctx, AssessmentFilter{StudentNISN: "1001"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assessed, err := repo.CountAssessedStudents(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), assessed)
}
