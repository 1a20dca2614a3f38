package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sikori-api/internal/dto"
	"github.com/noah-isme/sikori-api/internal/repository"
)

const authTestSecret = "sikori-test-secret"

func newAuthService(f *fixture) AuthService {
	return NewAuthService(
		repository.NewUserRepository(f.db),
		f.gate,
		AuthConfig{Secret: authTestSecret, TTL: time.Hour},
		testValidator(),
		testLogger(),
	)
}

func TestAuthServiceLoginIssuesToken(t *testing.T) {
	f := newFixture(t)
	admin := f.seedSuperAdmin(t)
	auth := newAuthService(f)

	response, err := auth.Login(context.Background(), dto.LoginRequest{Username: "superadmin", Password: "rahasia123"})
	require.NoError(t, err)
	require.Equal(t, admin.ID, response.User.ID)
	require.WithinDuration(t, time.Now().Add(time.Hour), response.ExpiresAt, time.Minute)

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	token, err := parser.Parse(response.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(authTestSecret), nil
	})
	require.NoError(t, err)

	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, "1", claims["sub"])
	require.Equal(t, "SUPER_ADMIN", claims["role"])
	require.Equal(t, "superadmin", claims["username"])
	require.Equal(t, "Super Administrator", claims["fullName"])
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.seedSuperAdmin(t)
	auth := newAuthService(f)

	_, err := auth.Login(context.Background(), dto.LoginRequest{Username: "superadmin", Password: "salah"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(context.Background(), dto.LoginRequest{Username: "tidakada", Password: "rahasia123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginRejectsAccountWithoutPassword(t *testing.T) {
	f := newFixture(t)
	auth := newAuthService(f)
	require.NoError(t, f.db.Exec(
		"INSERT INTO users (username, password_hash, full_name, role, created_at, updated_at) VALUES (?, '', ?, ?, ?, ?)",
		"pulihan", "Dari Backup", "ADMIN", time.Now(), time.Now(),
	).Error)

	_, err := auth.Login(context.Background(), dto.LoginRequest{Username: "pulihan", Password: "apa saja"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.seedSuperAdmin(t)
	auth := newAuthService(f)

	me, err := auth.Me(ctx, admin.ID)
	require.NoError(t, err)
	require.Equal(t, "superadmin", me.Username)

	_, err = auth.Me(ctx, 404)
	require.ErrorIs(t, err, ErrUserNotFound)

	updated, err := auth.UpdateProfile(ctx, admin.ID, dto.ProfileUpdateRequest{
		FullName: strPtr("Admin Sekolah"),
		Password: strPtr("gantibaru"),
	})
	require.NoError(t, err)
	require.Equal(t, "Admin Sekolah", updated.FullName)

	_, err = auth.Login(ctx, dto.LoginRequest{Username: "superadmin", Password: "gantibaru"})
	require.NoError(t, err)
	_, err = auth.Login(ctx, dto.LoginRequest{Username: "superadmin", Password: "rahasia123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
