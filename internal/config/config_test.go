package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("SIKORI_JWT_SECRET", "secret")
	t.Setenv("SIKORI_DATABASE_URL", "postgres://localhost/sikori")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "SIKORI API", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Equal(t, 24*time.Hour, cfg.JWTTTL)
	require.Equal(t, 5*time.Minute, cfg.CacheTTL)
	require.False(t, cfg.PublicBackupEnabled)
	require.Equal(t, "superadmin", cfg.AdminUsername)
	require.Equal(t, "*", cfg.AllowOrigins)
	require.True(t, cfg.AccessLog)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("SIKORI_JWT_SECRET", "")
	t.Setenv("SIKORI_DATABASE_URL", "postgres://localhost/sikori")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("SIKORI_JWT_SECRET", "secret")
	t.Setenv("SIKORI_DATABASE_URL", "file:sikori.db")
	t.Setenv("SIKORI_DATABASE_DRIVER", "SQLite")
	t.Setenv("SIKORI_JWT_TTL", "2h")
	t.Setenv("SIKORI_BACKUP_PUBLIC_ENABLED", "true")
	t.Setenv("SIKORI_APP_PORT", ":9090")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, 2*time.Hour, cfg.JWTTTL)
	require.True(t, cfg.PublicBackupEnabled)
	require.Equal(t, ":9090", cfg.HTTPAddress())
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("SIKORI_JWT_SECRET", "secret")
	t.Setenv("SIKORI_DATABASE_URL", "file:sikori.db")
	t.Setenv("SIKORI_CACHE_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
}
