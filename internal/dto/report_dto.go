package dto

import "time"

// DashboardResponse summarises the store for the landing page.
type DashboardResponse struct {
	Students         int64     `json:"students"`
	Activities       int64     `json:"activities"`
	AssessedStudents int64     `json:"assessedStudents"`
	Classes          []string  `json:"classes"`
	GeneratedAt      time.Time `json:"generatedAt"`
	CacheHit         bool      `json:"cacheHit"`
}

// ReportActivity identifies the activity a recap belongs to.
type ReportActivity struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	TargetClasses []string `json:"targetClasses"`
}

// ReportRow is one student's line in an activity recap.
type ReportRow struct {
	No     int               `json:"no"`
	NISN   string            `json:"nisn"`
	NIS    string            `json:"nis"`
	Name   string            `json:"name"`
	Class  string            `json:"class"`
	Scores map[string]string `json:"scores"`
	Checks map[string]bool   `json:"checks"`
	Note   string            `json:"note"`
}

// ActivityReportResponse is the recap matrix for one activity.
type ActivityReportResponse struct {
	Activity     ReportActivity            `json:"activity"`
	Class        string                    `json:"class"`
	Aspects      []SummativeAspectResponse `json:"aspects"`
	Items        []FormativeItemResponse   `json:"items"`
	Rows         []ReportRow               `json:"rows"`
	Distribution map[string]map[string]int `json:"distribution"`
	GeneratedAt  time.Time                 `json:"generatedAt"`
	CacheHit     bool                      `json:"cacheHit"`
}
