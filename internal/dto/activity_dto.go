package dto

import (
	"time"

	"github.com/noah-isme/sikori-api/internal/models"
)

// SummativeAspectRequest describes one rubric criterion of a new activity.
type SummativeAspectRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Dimension string `json:"dimension" validate:"required"`
}

// FormativeItemRequest describes one checklist entry of a new activity.
type FormativeItemRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// ActivityCreateRequest captures an activity with its rubric and checklist.
type ActivityCreateRequest struct {
	Name             string                   `json:"name" validate:"required,max=255"`
	TargetClasses    []string                 `json:"targetClasses" validate:"omitempty,dive,required,max=64"`
	SummativeAspects []SummativeAspectRequest `json:"summativeAspects" validate:"omitempty,max=50,dive"`
	FormativeItems   []FormativeItemRequest   `json:"formativeItems" validate:"omitempty,max=50,dive"`
}

// SummativeAspectResponse serializes a rubric criterion.
type SummativeAspectResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Dimension string `json:"dimension"`
}

// FormativeItemResponse serializes a checklist entry.
type FormativeItemResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActivityResponse serializes an activity with its children.
type ActivityResponse struct {
	ID               string                    `json:"id"`
	Name             string                    `json:"name"`
	TargetClasses    []string                  `json:"targetClasses"`
	SummativeAspects []SummativeAspectResponse `json:"summativeAspects"`
	FormativeItems   []FormativeItemResponse   `json:"formativeItems"`
	CreatedAt        time.Time                 `json:"createdAt"`
	UpdatedAt        time.Time                 `json:"updatedAt"`
}

// NewActivityResponse converts an activity model into a DTO.
func NewActivityResponse(activity models.Activity) ActivityResponse {
	targets := make([]string, 0, len(activity.TargetClasses))
	targets = append(targets, activity.TargetClasses...)

	aspects := make([]SummativeAspectResponse, 0, len(activity.SummativeAspects))
	for _, aspect := range activity.SummativeAspects {
		aspects = append(aspects, SummativeAspectResponse{ID: aspect.ID, Name: aspect.Name, Dimension: string(aspect.Dimension)})
	}

	items := make([]FormativeItemResponse, 0, len(activity.FormativeItems))
	for _, item := range activity.FormativeItems {
		items = append(items, FormativeItemResponse{ID: item.ID, Name: item.Name})
	}

	return ActivityResponse{
		ID:               activity.ID,
		Name:             activity.Name,
		TargetClasses:    targets,
		SummativeAspects: aspects,
		FormativeItems:   items,
		CreatedAt:        activity.CreatedAt,
		UpdatedAt:        activity.UpdatedAt,
	}
}
