package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Dimension is one of the eight character-education dimensions a summative
// aspect reports against.
type Dimension string

const (
	DimensionFaith       Dimension = "Keimanan dan Ketakwaan Terhadap Tuhan YME"
	DimensionCitizenship Dimension = "Kewargaan (Global/Lokal)"
	DimensionReasoning   Dimension = "Penalaran Kritis"
	DimensionCreativity  Dimension = "Kreativitas"
	DimensionTeamwork    Dimension = "Kolaborasi"
	DimensionIndependent Dimension = "Kemandirian"
	DimensionHealth      Dimension = "Kesehatan (Fisik & Mental)"
	DimensionCommunicate Dimension = "Komunikasi"
)

// Dimensions lists every valid dimension in display order.
var Dimensions = []Dimension{
	DimensionFaith,
	DimensionCitizenship,
	DimensionReasoning,
	DimensionCreativity,
	DimensionTeamwork,
	DimensionIndependent,
	DimensionHealth,
	DimensionCommunicate,
}

// Valid reports whether d belongs to the fixed dimension set.
func (d Dimension) Valid() bool {
	for _, candidate := range Dimensions {
		if candidate == d {
			return true
		}
	}
	return false
}

// Activity is an extracurricular program with its own rubric and checklist.
type Activity struct {
	ID               string                      `gorm:"primaryKey;size:36" json:"id"`
	Name             string                      `gorm:"size:255;not null" json:"name"`
	TargetClasses    datatypes.JSONSlice[string] `gorm:"type:json" json:"targetClasses"`
	SummativeAspects []SummativeAspect           `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"summativeAspects"`
	FormativeItems   []FormativeItem             `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"formativeItems"`
	CreatedAt        time.Time                   `json:"createdAt"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
}

// AppliesTo returns true when the activity targets the class. An empty
// target list applies to every class.
func (a Activity) AppliesTo(class string) bool {
	if len(a.TargetClasses) == 0 {
		return true
	}
	class = strings.TrimSpace(class)
	for _, target := range a.TargetClasses {
		if strings.EqualFold(strings.TrimSpace(target), class) {
			return true
		}
	}
	return false
}

// SummativeAspect is a rubric criterion scored with a RubricScore.
type SummativeAspect struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ActivityID string    `gorm:"size:36;not null;index" json:"activityId"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Dimension  Dimension `gorm:"size:128;not null" json:"dimension"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FormativeItem is an observation checklist entry.
type FormativeItem struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ActivityID string    `gorm:"size:36;not null;index" json:"activityId"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
