package domain

import "time"

// SourceType distinguishes text-to-video tasks from image-to-video tasks.
type SourceType string

const (
	SourceText  SourceType = "text"
	SourceImage SourceType = "image"
)

// VideoTask is the locally tracked record of one generation job. GatewayTaskID
// is the upstream id (possibly carrying a family routing tag); it is assigned
// once at submission and never mutated. Status fields are overwritten on
// every poll with the normalized gateway result.
type VideoTask struct {
	ID              string
	GatewayTaskID   *string
	Model           string
	ModelPath       *string
	Prompt          string
	PromptID        *string
	SourceType      SourceType
	InputImageURL   *string
	AspectRatio     string
	DurationSeconds int
	Status          string
	Progress        float64
	ResultURL       *string
	ErrorMessage    *string
	AccountID       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TaskStatusUpdate carries the fields a status poll may overwrite.
type TaskStatusUpdate struct {
	Status       string
	Progress     float64
	ResultURL    *string
	ErrorMessage *string
}
