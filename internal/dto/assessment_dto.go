package dto

import (
	"strings"
	"time"

	"github.com/noah-isme/sikori-api/internal/models"
)

// AssessmentUpsertRequest carries the full payload for one assessment key.
// Omitted mutable fields are stored as empty.
type AssessmentUpsertRequest struct {
	StudentNISN string  `json:"studentNisn" validate:"required_without=StudentID,max=32"`
	StudentID   string  `json:"studentId" validate:"omitempty,max=32"`
	ActivityID  string  `json:"activityId" validate:"required,max=36"`
	Type        string  `json:"type" validate:"required,oneof=SUMMATIVE FORMATIVE NOTE"`
	AspectID    *string `json:"aspectId" validate:"omitempty,max=36"`
	ItemID      *string `json:"itemId" validate:"omitempty,max=36"`
	Score       *string `json:"score" validate:"omitempty,oneof=SB B C K"`
	Checked     *bool   `json:"checked"`
	Note        *string `json:"note" validate:"omitempty,max=5000"`
}

// Student returns the student number, accepting either field name.
func (r AssessmentUpsertRequest) Student() string {
	if nisn := strings.TrimSpace(r.StudentNISN); nisn != "" {
		return nisn
	}
	return strings.TrimSpace(r.StudentID)
}

// AssessmentListRequest filters the assessment listing.
type AssessmentListRequest struct {
	ActivityID  string
	StudentNISN string
	Type        string
}

// AssessmentResponse serializes an assessment row.
type AssessmentResponse struct {
	ID          string    `json:"id"`
	StudentNISN string    `json:"studentNisn"`
	ActivityID  string    `json:"activityId"`
	Type        string    `json:"type"`
	AspectID    *string   `json:"aspectId"`
	ItemID      *string   `json:"itemId"`
	Score       *string   `json:"score"`
	Checked     *bool     `json:"checked"`
	Note        *string   `json:"note"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewAssessmentResponse converts an assessment model into a DTO.
func NewAssessmentResponse(assessment models.Assessment) AssessmentResponse {
	var score *string
	if assessment.Score != nil {
		value := string(*assessment.Score)
		score = &value
	}

	return AssessmentResponse{
		ID:          assessment.ID,
		StudentNISN: assessment.StudentNISN,
		ActivityID:  assessment.ActivityID,
		Type:        string(assessment.Type),
		AspectID:    assessment.AspectID,
		ItemID:      assessment.ItemID,
		Score:       score,
		Checked:     assessment.Checked,
		Note:        assessment.Note,
		CreatedAt:   assessment.CreatedAt,
		UpdatedAt:   assessment.UpdatedAt,
	}
}
