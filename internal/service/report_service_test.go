package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/repository"
)

func newReportService(t *testing.T, f *fixture) (ReportService, *miniredis.Miniredis) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reports := NewReportService(
		repository.NewStudentRepository(f.db),
		repository.NewActivityRepository(f.db),
		repository.NewAssessmentRepository(f.db),
		client,
		time.Minute,
		testLogger(),
	)
	return reports, server
}

func seedRecapData(t *testing.T, f *fixture) dto.ActivityResponse {
	t.Helper()
	ctx := context.Background()
	f.seedStudent(t, "0051234567", "Ahmad", "X-A")
	f.seedStudent(t, "0051234568", "Budi", "X-A")
	f.seedStudent(t, "0051234569", "Citra", "XI-B")
	activity := f.seedPramuka(t)

	requests := []dto.AssessmentUpsertRequest{
		{StudentNISN: "0051234567", ActivityID: activity.ID, Type: "SUMMATIVE", AspectID: strPtr(activity.SummativeAspects[0].ID), Score: strPtr("SB")},
		{StudentNISN: "0051234567", ActivityID: activity.ID, Type: "NOTE", Note: strPtr("Aktif di regu")},
		{StudentNISN: "0051234568", ActivityID: activity.ID, Type: "FORMATIVE", ItemID: strPtr(activity.FormativeItems[0].ID), Checked: boolPtr(true)},
	}
	for _, req := range requests {
		_, err := f.assessments.Upsert(ctx, superAdmin, req)
		require.NoError(t, err)
	}
	return activity
}

func TestReportActivityRecapMatrix(t *testing.T) {
	f := newFixture(t)
	reports, _ := newReportService(t, f)
	activity := seedRecapData(t, f)
	aspectID := activity.SummativeAspects[0].ID
	itemID := activity.FormativeItems[0].ID

	recap, err := reports.ActivityRecap(context.Background(), activity.ID, "")
	require.NoError(t, err)
	require.Equal(t, "all", recap.Class)
	require.Equal(t, "Pramuka", recap.Activity.Name)
	require.Len(t, recap.Aspects, 1)
	require.Len(t, recap.Items, 1)
	require.Len(t, recap.Rows, 2, "students outside the target classes are excluded")

	rows := map[string]dto.ReportRow{}
	for _, row := range recap.Rows {
		rows[row.NISN] = row
	}

	ahmad := rows["0051234567"]
	require.Equal(t, "SB", ahmad.Scores[aspectID])
	require.False(t, ahmad.Checks[itemID])
	require.Equal(t, "Aktif di regu", ahmad.Note)
	require.Equal(t, "L-0051234567", ahmad.NIS)

	budi := rows["0051234568"]
	require.Equal(t, "-", budi.Scores[aspectID])
	require.True(t, budi.Checks[itemID])
	require.Empty(t, budi.Note)

	require.Equal(t, map[string]int{"SB": 1, "B": 0, "C": 0, "K": 0}, recap.Distribution[aspectID])
	require.Equal(t, 1, recap.Rows[0].No)
	require.Equal(t, 2, recap.Rows[1].No)
}

func TestReportActivityRecapClassFilter(t *testing.T) {
	f := newFixture(t)
	reports, _ := newReportService(t, f)
	activity := seedRecapData(t, f)

	recap, err := reports.ActivityRecap(context.Background(), activity.ID, "XI-B")
	require.NoError(t, err)
	require.Equal(t, "XI-B", recap.Class)
	require.Empty(t, recap.Rows)
	require.NotNil(t, recap.Rows)
}

func TestReportActivityRecapUnknownActivity(t *testing.T) {
	f := newFixture(t)
	reports, _ := newReportService(t, f)

	_, err := reports.ActivityRecap(context.Background(), "missing", "all")
	require.ErrorIs(t, err, ErrActivityNotFound)
}

func TestReportCachingAndInvalidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reports, server := newReportService(t, f)
	activity := seedRecapData(t, f)

	first, err := reports.ActivityRecap(ctx, activity.ID, "X-A")
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.True(t, server.Exists(activityCachePrefix+activity.ID+":x-a"))

	second, err := reports.ActivityRecap(ctx, activity.ID, "X-A")
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.Rows, second.Rows)

	dashboard, err := reports.Dashboard(ctx)
	require.NoError(t, err)
	require.False(t, dashboard.CacheHit)
	require.Equal(t, int64(3), dashboard.Students)
	require.Equal(t, int64(1), dashboard.Activities)
	require.Equal(t, int64(2), dashboard.AssessedStudents)
	require.Equal(t, []string{"X-A", "XI-B"}, dashboard.Classes)

	cached, err := reports.Dashboard(ctx)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)

	reports.InvalidateActivity(ctx, activity.ID)
	require.False(t, server.Exists(activityCachePrefix+activity.ID+":x-a"))
	require.False(t, server.Exists(dashboardCacheKey))

	third, err := reports.ActivityRecap(ctx, activity.ID, "X-A")
	require.NoError(t, err)
	require.False(t, third.CacheHit)

	reports.InvalidateAll(ctx)
	require.Empty(t, server.Keys())
}

func TestReportServiceWithoutCache(t *testing.T) {
	f := newFixture(t)
	seedRecapData(t, f)
	reports := NewReportService(
		repository.NewStudentRepository(f.db),
		repository.NewActivityRepository(f.db),
		repository.NewAssessmentRepository(f.db),
		nil,
		time.Minute,
		testLogger(),
	)

	first, err := reports.Dashboard(context.Background())
	require.NoError(t, err)
	second, err := reports.Dashboard(context.Background())
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.False(t, second.CacheHit)

	reports.InvalidateAll(context.Background())
}
