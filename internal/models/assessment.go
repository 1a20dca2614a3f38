package models

import "time"

// AssessmentType distinguishes the three kinds of assessment rows.
type AssessmentType string

const (
	AssessmentSummative AssessmentType = "SUMMATIVE"
	AssessmentFormative AssessmentType = "FORMATIVE"
	AssessmentNote      AssessmentType = "NOTE"
)

// RubricScore is the ordinal level recorded for a summative aspect.
type RubricScore string

const (
	ScoreVeryGood   RubricScore = "SB"
	ScoreGood       RubricScore = "B"
	ScoreSufficient RubricScore = "C"
	ScorePoor       RubricScore = "K"
)

// Assessment is the fact table. The natural key is
// (StudentNISN, ActivityID, Type, CriterionKey) and is backed by a unique
// index; CriterionKey holds the aspect id, the item id, or "" for notes.
type Assessment struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	StudentNISN  string         `gorm:"column:student_nisn;size:32;not null;uniqueIndex:idx_assessment_key,priority:1" json:"studentNisn"`
	ActivityID   string         `gorm:"size:36;not null;uniqueIndex:idx_assessment_key,priority:2;index" json:"activityId"`
	Type         AssessmentType `gorm:"size:16;not null;uniqueIndex:idx_assessment_key,priority:3" json:"type"`
	CriterionKey string         `gorm:"size:36;not null;default:'';uniqueIndex:idx_assessment_key,priority:4" json:"-"`
	AspectID     *string        `gorm:"size:36;index" json:"aspectId"`
	ItemID       *string        `gorm:"size:36;index" json:"itemId"`
	Score        *RubricScore   `gorm:"size:2" json:"score"`
	Checked      *bool          `json:"checked"`
	Note         *string        `gorm:"type:text" json:"note"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`

	Student  *Student         `gorm:"foreignKey:StudentNISN;references:NISN;constraint:OnDelete:CASCADE" json:"-"`
	Activity *Activity        `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"-"`
	Aspect   *SummativeAspect `gorm:"foreignKey:AspectID;constraint:OnDelete:CASCADE" json:"-"`
	Item     *FormativeItem   `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"-"`
}

// CriterionKeyFor derives the natural-key component for an assessment type.
func CriterionKeyFor(kind AssessmentType, aspectID, itemID *string) string {
	switch kind {
	case AssessmentSummative:
		if aspectID != nil {
			return *aspectID
		}
	case AssessmentFormative:
		if itemID != nil {
			return *itemID
		}
	}
	return ""
}
