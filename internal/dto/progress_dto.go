package dto

import (
	"time"

	"github.com/noah-isme/gema-progress-api/internal/progress"
)

// ProgressSummaryRequest identifies the block, course and user of a summary.
type ProgressSummaryRequest struct {
	BlockID  uint `validate:"required"`
	CourseID uint `validate:"required"`
	UserID   uint `validate:"required"`
}

// ProgressSummaryResponse serializes the progress of one user.
type ProgressSummaryResponse struct {
	NumEvents     int `json:"numevents"`
	NumAttempts   int `json:"numattempts"`
	ProgressValue int `json:"progressvalue"`
}

// ProgressBlockListResponse lists the progress blocks of a course.
type ProgressBlockListResponse struct {
	CourseID uint   `json:"course_id"`
	Blocks   []uint `json:"blocks"`
}

// ProgressBarRequest asks for the rendered bar of UserID as seen by ViewerID.
type ProgressBarRequest struct {
	BlockID  uint `validate:"required"`
	CourseID uint `validate:"required"`
	UserID   uint `validate:"required"`
	ViewerID uint `validate:"required"`
}

// ProgressBarResponse carries a rendered bar and its block settings.
type ProgressBarResponse struct {
	BlockID        uint          `json:"block_id"`
	CourseID       uint          `json:"course_id"`
	UserID         uint          `json:"user_id"`
	Title          string        `json:"title"`
	Outcome        string        `json:"outcome"`
	ShowIcons      bool          `json:"show_icons"`
	ShowPercentage bool          `json:"show_percentage"`
	Bar            *progress.Bar `json:"bar,omitempty"`
}

// ProgressOverviewRequest captures overview query params.
type ProgressOverviewRequest struct {
	BlockID  uint   `validate:"required"`
	CourseID uint   `validate:"required"`
	ViewerID uint   `validate:"required"`
	Sort     string `validate:"omitempty,max=64"`
}

// ProgressOverviewResponse lists the progress of every roster member.
type ProgressOverviewResponse struct {
	BlockID   uint                   `json:"block_id"`
	CourseID  uint                   `json:"course_id"`
	Outcome   string                 `json:"outcome"`
	NumEvents int                    `json:"numevents"`
	Sort      string                 `json:"sort"`
	Rows      []progress.OverviewRow `json:"rows"`
}

// ProgressRemapRequest moves monitored instance settings to new instance ids.
type ProgressRemapRequest struct {
	BlockID uint            `json:"-" validate:"required"`
	Mapping map[string]uint `json:"mapping" validate:"required,min=1,dive,keys,required,endkeys,required"`
}

// ProgressRemapResponse reports how many instances were moved.
type ProgressRemapResponse struct {
	BlockID uint `json:"block_id"`
	Moved   int  `json:"moved"`
}

// ProgressSummaryEvent is published whenever a summary is computed.
type ProgressSummaryEvent struct {
	ID            string                  `json:"id"`
	CorrelationID string                  `json:"correlation_id,omitempty"`
	BlockID       uint                    `json:"block_id"`
	CourseID      uint                    `json:"course_id"`
	UserID        uint                    `json:"user_id"`
	Summary       ProgressSummaryResponse `json:"summary"`
	ComputedAt    time.Time               `json:"computed_at"`
}
