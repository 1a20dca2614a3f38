package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sikori-api/internal/models"
	"github.com/noah-isme/sikori-api/internal/repository"
)

func TestSeedServiceCreatesConfiguredAdmin(t *testing.T) {
	f := newFixture(t)
	seeder := NewSeedService(repository.NewUserRepository(f.db), testLogger())

	created, err := seeder.EnsureSuperAdmin(context.Background(), SuperAdminSeed{Username: "kepala", Password: "rahasia123"})
	require.NoError(t, err)
	require.True(t, created)

	var user models.User
	require.NoError(t, f.db.Where("username = ?", "kepala").First(&user).Error)
	require.Equal(t, models.RoleSuperAdmin, user.Role)
	require.Equal(t, "Super Administrator", user.FullName)
	require.NoError(t, user.CheckPassword("rahasia123"))

	again, err := seeder.EnsureSuperAdmin(context.Background(), SuperAdminSeed{Username: "lain", Password: "rahasia123"})
	require.NoError(t, err)
	require.False(t, again)
}

func TestSeedServiceGeneratesAndLogsPassword(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	seeder := NewSeedService(repository.NewUserRepository(f.db), zerolog.New(&buf))

	created, err := seeder.EnsureSuperAdmin(context.Background(), SuperAdminSeed{})
	require.NoError(t, err)
	require.True(t, created)
	require.Contains(t, buf.String(), "generated super admin password")

	var user models.User
	require.NoError(t, f.db.Where("username = ?", "superadmin").First(&user).Error)
	require.NotEmpty(t, user.PasswordHash)
}

func TestSeedServicePromotesExistingAccount(t *testing.T) {
	f := newFixture(t)
	existing := models.User{Username: "operator", FullName: "Operator", Role: models.RoleAdmin}
	require.NoError(t, existing.SetPassword("lamapass"))
	require.NoError(t, f.db.Create(&existing).Error)

	seeder := NewSeedService(repository.NewUserRepository(f.db), testLogger())
	created, err := seeder.EnsureSuperAdmin(context.Background(), SuperAdminSeed{Username: "operator"})
	require.NoError(t, err)
	require.True(t, created)

	var user models.User
	require.NoError(t, f.db.First(&user, existing.ID).Error)
	require.Equal(t, models.RoleSuperAdmin, user.Role)
	require.NoError(t, user.CheckPassword("lamapass"))
}
