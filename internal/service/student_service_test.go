package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/models"
)

func TestStudentServiceCreateRejectsDuplicateNISN(t *testing.T) {
	f := newFixture(t)
	f.seedStudent(t, "0051234567", "Ahmad", "X-A")

	_, err := f.students.Create(context.Background(), superAdmin, dto.StudentCreateRequest{
		NISN:  "0051234567",
		Name:  "Ahmad Lain",
		Class: "X-B",
	})
	require.ErrorIs(t, err, ErrStudentExists)

	_, err = f.students.Create(context.Background(), superAdmin, dto.StudentCreateRequest{NISN: "1", Class: "X"})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}

func TestStudentServiceListFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStudent(t, "0051234567", "Ahmad", "X-A")
	f.seedStudent(t, "0051234568", "Budi", "X-A")
	f.seedStudent(t, "0051234569", "Citra", "XI-B")

	all, err := f.students.List(ctx, dto.StudentListRequest{Class: "all"})
	require.NoError(t, err)
	require.Len(t, all, 3)

	xa, err := f.students.List(ctx, dto.StudentListRequest{Class: "X-A"})
	require.NoError(t, err)
	require.Len(t, xa, 2)

	search, err := f.students.List(ctx, dto.StudentListRequest{Search: "Cit"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	require.Equal(t, "0051234569", search[0].NISN)

	classes, err := f.students.Classes(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"X-A", "XI-B"}, classes)
}

func TestStudentServiceBulkImportLaterRowWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStudent(t, "0051234567", "Ahmad", "X-A")

	response, err := f.students.BulkImport(ctx, superAdmin, dto.StudentBulkRequest{Students: []dto.StudentCreateRequest{
		{NISN: "0051234567", Name: "Ahmad Fauzi", Class: "X-B"},
		{NISN: "0051234570", Name: "Dewi", Class: "X-B"},
		{NISN: "0051234570", Name: "Dewi Lestari", Class: "X-C"},
	}})
	require.NoError(t, err)
	require.Equal(t, 2, response.Imported)

	students, err := f.students.List(ctx, dto.StudentListRequest{})
	require.NoError(t, err)
	require.Len(t, students, 2)

	byNISN := map[string]dto.StudentResponse{}
	for _, student := range students {
		byNISN[student.NISN] = student
	}
	require.Equal(t, "Ahmad Fauzi", byNISN["0051234567"].Name)
	require.Equal(t, "X-B", byNISN["0051234567"].Class)
	require.Equal(t, "Dewi Lestari", byNISN["0051234570"].Name)
	require.Contains(t, f.events.names(), EventStudentsImported)
}

func TestStudentServiceBulkImportValidatesRows(t *testing.T) {
	f := newFixture(t)

	_, err := f.students.BulkImport(context.Background(), superAdmin, dto.StudentBulkRequest{})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)

	_, err = f.students.BulkImport(context.Background(), superAdmin, dto.StudentBulkRequest{Students: []dto.StudentCreateRequest{
		{NISN: "1", Name: "Tanpa Kelas"},
	}})
	require.ErrorAs(t, err, &validationErrs)
}

func TestStudentServiceDeleteCascadesAssessments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedStudent(t, "0051234567", "Ahmad", "X-A")
	activity := f.seedPramuka(t)

	_, err := f.assessments.Upsert(ctx, superAdmin, dto.AssessmentUpsertRequest{
		StudentNISN: "0051234567",
		ActivityID:  activity.ID,
		Type:        "NOTE",
		Note:        strPtr("Rajin"),
	})
	require.NoError(t, err)

	require.NoError(t, f.students.Delete(ctx, superAdmin, "0051234567"))
	require.ErrorIs(t, f.students.Delete(ctx, superAdmin, "0051234567"), ErrStudentNotFound)

	var remaining int64
	require.NoError(t, f.db.Model(&models.Assessment{}).Count(&remaining).Error)
	require.Zero(t, remaining)
	require.Contains(t, f.events.names(), EventStudentDeleted)
}
