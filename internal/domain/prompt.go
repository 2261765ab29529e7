package domain

import "time"

// Prompt is a reusable video prompt template. Library entries ship with the
// dashboard; custom entries are authored by operators or generated by the
// prompt engineer endpoint.
type Prompt struct {
	ID              string
	Category        string
	TitleEN         string
	TitleCN         string
	Description     string
	Style           *string
	Camera          *string
	Lighting        *string
	Setting         *string
	DurationSeconds int
	AspectRatio     string
	Cuts            int
	Motion          *string
	Keywords        []string
	NegativePrompts []string
	IsCustom        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PromptFilter narrows prompt listings.
type PromptFilter struct {
	Category   string
	CustomOnly bool
	Search     string
	Limit      int
}
