package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/models"
)

func TestUserServiceCreateAndList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedSuperAdmin(t)

	created, err := f.users.Create(ctx, superAdmin, dto.UserCreateRequest{
		Username: "walikelas",
		Password: "rahasia",
		FullName: "<i>Bu</i> Sari",
		Role:     string(models.RoleHomeroom),
		NIP:      strPtr(" 1987001 "),
	})
	require.NoError(t, err)
	require.Equal(t, "Bu Sari", created.FullName)
	require.Equal(t, "1987001", *created.NIP)

	users, err := f.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	_, err = f.users.Create(ctx, superAdmin, dto.UserCreateRequest{
		Username: "walikelas",
		Password: "rahasia",
		FullName: "Duplikat",
		Role:     string(models.RoleTeacher),
	})
	require.ErrorIs(t, err, ErrUsernameTaken)

	var stored models.User
	require.NoError(t, f.db.First(&stored, created.ID).Error)
	require.NoError(t, stored.CheckPassword("rahasia"))

	var audits int64
	require.NoError(t, f.db.Model(&models.AuditLog{}).Where("action = ?", "user.created").Count(&audits).Error)
	require.Equal(t, int64(1), audits)
}

func TestUserServiceCreateValidatesRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Create(context.Background(), superAdmin, dto.UserCreateRequest{
		Username: "guru",
		Password: "rahasia",
		FullName: "Guru",
		Role:     "KEPALA",
	})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}

func TestUserServiceUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedSuperAdmin(t)

	created, err := f.users.Create(ctx, superAdmin, dto.UserCreateRequest{
		Username: "guru",
		Password: "rahasia",
		FullName: "Guru",
		Role:     string(models.RoleTeacher),
	})
	require.NoError(t, err)

	updated, err := f.users.Update(ctx, superAdmin, created.ID, dto.UserUpdateRequest{
		FullName: strPtr("Pak Guru"),
		Role:     strPtr(string(models.RoleAdmin)),
		Password: strPtr("baru1234"),
	})
	require.NoError(t, err)
	require.Equal(t, "Pak Guru", updated.FullName)
	require.Equal(t, string(models.RoleAdmin), updated.Role)

	var stored models.User
	require.NoError(t, f.db.First(&stored, created.ID).Error)
	require.NoError(t, stored.CheckPassword("baru1234"))

	_, err = f.users.Update(ctx, superAdmin, 999, dto.UserUpdateRequest{FullName: strPtr("X")})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceProtectsLastSuperAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.seedSuperAdmin(t)
	other := Actor{ID: 99, Role: models.RoleSuperAdmin, Username: "other"}

	_, err := f.users.Update(ctx, other, admin.ID, dto.UserUpdateRequest{Role: strPtr(string(models.RoleAdmin))})
	require.ErrorIs(t, err, ErrLastSuperAdmin)

	err = f.users.Delete(ctx, other, admin.ID)
	require.ErrorIs(t, err, ErrLastSuperAdmin)

	second, err := f.users.Create(ctx, superAdmin, dto.UserCreateRequest{
		Username: "cadangan",
		Password: "rahasia",
		FullName: "Cadangan",
		Role:     string(models.RoleSuperAdmin),
	})
	require.NoError(t, err)

	require.NoError(t, f.users.Delete(ctx, other, second.ID))
}

func TestUserServiceDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.seedSuperAdmin(t)
	actor := Actor{ID: admin.ID, Role: models.RoleSuperAdmin, Username: admin.Username}

	require.ErrorIs(t, f.users.Delete(ctx, actor, admin.ID), ErrSelfDelete)
	require.ErrorIs(t, f.users.Delete(ctx, actor, 404), ErrUserNotFound)

	guru, err := f.users.Create(ctx, actor, dto.UserCreateRequest{
		Username: "guru",
		Password: "rahasia",
		FullName: "Guru",
		Role:     string(models.RoleTeacher),
	})
	require.NoError(t, err)
	require.NoError(t, f.users.Delete(ctx, actor, guru.ID))

	users, err := f.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}
