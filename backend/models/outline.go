package models

import "time"

type OutlineStatus string

const (
	OutlineSuggested OutlineStatus = "suggested"
	OutlineSaved     OutlineStatus = "saved"
	OutlineStarted   OutlineStatus = "started"
	OutlineCompleted OutlineStatus = "completed"
	OutlineDismissed OutlineStatus = "dismissed"
)

// ModuleSummary is the skeleton form of a module before any content
// has been generated for it.
type ModuleSummary struct {
	Title      string `json:"title"`
	EstMinutes int    `json:"estMinutes"`
}

// Outline is a proposed or in-progress course skeleton. Each outline
// reserves a course id up front; the Course row itself is created
// lazily when the outline is started.
type Outline struct {
	ID        string `gorm:"primaryKey"`
	CourseID  string `gorm:"uniqueIndex"`
	Title     string
	Goal      string
	Status    OutlineStatus   `gorm:"index"`
	Questions []string        `gorm:"serializer:json"`
	Modules   []ModuleSummary `gorm:"serializer:json"`
	CreatedAt time.Time
}
