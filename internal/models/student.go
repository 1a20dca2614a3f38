package models

import "time"

// Student is a learner identified by the national student number (NISN).
type Student struct {
	NISN      string    `gorm:"column:nisn;primaryKey;size:32" json:"nisn"`
	NIS       string    `gorm:"column:nis;size:32" json:"nis"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	Class     string    `gorm:"size:64;not null;index" json:"class"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
