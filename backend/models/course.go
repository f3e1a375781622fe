package models

import "time"

type CourseStatus string

const (
	CourseStarted   CourseStatus = "started"
	CourseCompleted CourseStatus = "completed"
)

type ModuleProgress string

const (
	ProgressNotStarted ModuleProgress = "not_started"
	ProgressInProgress ModuleProgress = "in_progress"
	ProgressDone       ModuleProgress = "done"
)

// CompletedViaSelfReport marks courses completed through the
// "I already know this" action rather than module progress.
const CompletedViaSelfReport = "self_report"

// Course is the durable learning unit. Goal is a label string, not a
// foreign key: the empty string means the course is pending (no goal
// assigned yet). Status is derived from the progress map, never set
// independently of it.
type Course struct {
	ID           string `gorm:"primaryKey"`
	Title        string
	Goal         string                    `gorm:"index"`
	ModuleIDs    []string                  `gorm:"serializer:json"`
	Status       CourseStatus              `gorm:"index"`
	Progress     map[string]ModuleProgress `gorm:"serializer:json"`
	CompletedVia string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// DerivedStatus recomputes the status from the progress map: completed
// iff every listed module is done. An empty module list only counts as
// completed when the course was explicitly self-reported.
func (c *Course) DerivedStatus() CourseStatus {
	if c.CompletedVia != "" {
		return CourseCompleted
	}
	if len(c.ModuleIDs) == 0 {
		return CourseStarted
	}
	for _, id := range c.ModuleIDs {
		if c.Progress[id] != ProgressDone {
			return CourseStarted
		}
	}
	return CourseCompleted
}

// Module is one lesson unit, exclusively owned by its course.
type Module struct {
	ID         string `gorm:"primaryKey"`
	CourseID   string `gorm:"index"`
	Idx        int
	Title      string
	EstMinutes int
	Lesson     string
	MicroTask  string
	Quiz       []QuizQuestion `gorm:"serializer:json"`
	Refs       []string       `gorm:"serializer:json"`
}
