package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/sikori-api/internal/database"
	"github.com/noah-isme/sikori-api/internal/models"
)

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

func seedActivity(t *testing.T, db *gorm.DB) models.Activity {
	t.Helper()
	activity := models.Activity{
		ID:   uuid.NewString(),
		Name: "Pramuka",
		SummativeAspects: []models.SummativeAspect{
			{ID: uuid.NewString(), Name: "Kedisiplinan", Dimension: models.DimensionIndependent},
		},
		FormativeItems: []models.FormativeItem{
			{ID: uuid.NewString(), Name: "Membawa perlengkapan"},
		},
	}
	require.NoError(t, NewActivityRepository(db).Create(t.Context(), &activity))
	return activity
}

func strPtr(v string) *string {
	return &v
}

func scorePtr(v models.RubricScore) *models.RubricScore {
	return &v
}
