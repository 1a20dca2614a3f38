package dto

import (
	"time"

	"github.com/noah-isme/sikori-api/internal/models"
)

// StudentCreateRequest captures a single student registration.
type StudentCreateRequest struct {
	NISN  string `json:"nisn" validate:"required,max=32"`
	NIS   string `json:"nis" validate:"omitempty,max=32"`
	Name  string `json:"name" validate:"required,max=255"`
	Class string `json:"class" validate:"required,max=64"`
}

// StudentBulkRequest wraps a spreadsheet import keyed by NISN.
type StudentBulkRequest struct {
	Students []StudentCreateRequest `validate:"required,min=1,max=5000,dive"`
}

// StudentListRequest filters the student listing.
type StudentListRequest struct {
	Class  string
	Search string
}

// StudentResponse serializes a student.
type StudentResponse struct {
	NISN      string    `json:"nisn"`
	NIS       string    `json:"nis"`
	Name      string    `json:"name"`
	Class     string    `json:"class"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StudentBulkResponse reports how many rows an import touched.
type StudentBulkResponse struct {
	Imported int   `json:"imported"`
	Affected int64 `json:"affected"`
}

// NewStudentResponse converts a student model into a DTO.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		NISN:      student.NISN,
		NIS:       student.NIS,
		Name:      student.Name,
		Class:     student.Class,
		CreatedAt: student.CreatedAt,
		UpdatedAt: student.UpdatedAt,
	}
}
