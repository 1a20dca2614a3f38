package dto

import (
	"time"

	"github.com/noah-isme/sikori-api/internal/models"
)

// LoginRequest captures credentials for token issuance.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

// LoginResponse returns a signed token with the authenticated profile.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// ProfileUpdateRequest lets a user change their own display name or password.
type ProfileUpdateRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=1,max=255"`
	Password *string `json:"password" validate:"omitempty,min=6,max=128"`
}

// UserCreateRequest captures a new account.
type UserCreateRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=64"`
	Password string  `json:"password" validate:"required,min=6,max=128"`
	FullName string  `json:"fullName" validate:"required,max=255"`
	Role     string  `json:"role" validate:"required,oneof=SUPER_ADMIN ADMIN KEPALA_SEKOLAH WALI_KELAS GURU_MATA_PELAJARAN"`
	NIP      *string `json:"nip" validate:"omitempty,max=32"`
}

// UserUpdateRequest captures partial account changes.
type UserUpdateRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=1,max=255"`
	Role     *string `json:"role" validate:"omitempty,oneof=SUPER_ADMIN ADMIN KEPALA_SEKOLAH WALI_KELAS GURU_MATA_PELAJARAN"`
	NIP      *string `json:"nip" validate:"omitempty,max=32"`
	Password *string `json:"password" validate:"omitempty,min=6,max=128"`
}

// UserResponse serializes an account without credentials.
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	NIP       *string   `json:"nip"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserResponse converts a user model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		Role:      string(user.Role),
		NIP:       user.NIP,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
