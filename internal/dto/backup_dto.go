package dto

import (
	"time"

	"github.com/noah-isme/sikori-api/internal/models"
)

// BackupFormatVersion is written into every exported document.
const BackupFormatVersion = "1.0"

// BackupMetadata describes who produced a backup and when.
type BackupMetadata struct {
	Version    string    `json:"version"`
	Timestamp  time.Time `json:"timestamp"`
	ExportedBy string    `json:"exportedBy"`
}

// BackupUser is a user row in a backup. PasswordHash is accepted on restore
// and never emitted on export. Password carries the bcrypt hash found in
// older exports.
type BackupUser struct {
	ID           uint        `json:"id"`
	Username     string      `json:"username"`
	FullName     string      `json:"fullName"`
	Role         models.Role `json:"role"`
	NIP          *string     `json:"nip"`
	PasswordHash string      `json:"passwordHash,omitempty"`
	Password     string      `json:"password,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// BackupActivity is an activity row without its nested children.
type BackupActivity struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TargetClasses []string  `json:"targetClasses"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BackupData holds every row of the six backed-up collections.
type BackupData struct {
	Users            []BackupUser             `json:"users"`
	Students         []models.Student         `json:"students"`
	Activities       []BackupActivity         `json:"activities"`
	SummativeAspects []models.SummativeAspect `json:"summativeAspects"`
	FormativeItems   []models.FormativeItem   `json:"formativeItems"`
	Assessments      []models.Assessment      `json:"assessments"`
}

// BackupDocument is the full export/restore payload.
type BackupDocument struct {
	Metadata BackupMetadata `json:"metadata"`
	Data     BackupData     `json:"data"`
}

// RestoreResponse reports the row counts after a restore and the rows that
// were dropped because their parent record was missing or duplicated.
type RestoreResponse struct {
	RestoredAt time.Time        `json:"restoredAt"`
	Counts     map[string]int64 `json:"counts"`
	Skipped    map[string]int   `json:"skipped,omitempty"`
}
