package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role is the authorization role carried by a user account and its token.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RolePrincipal  Role = "KEPALA_SEKOLAH"
	RoleHomeroom   Role = "WALI_KELAS"
	RoleTeacher    Role = "GURU_MATA_PELAJARAN"
)

// Roles lists every assignable role.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RolePrincipal, RoleHomeroom, RoleTeacher}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, candidate := range Roles {
		if candidate == r {
			return true
		}
	}
	return false
}

// User is a staff account able to sign in.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	FullName     string    `gorm:"size:255;not null" json:"fullName"`
	Role         Role      `gorm:"size:32;not null;index" json:"role"`
	NIP          *string   `gorm:"column:nip;size:32" json:"nip"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SetPassword stores the bcrypt hash of pwd.
func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares pwd against the stored hash.
func (u User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd))
}
