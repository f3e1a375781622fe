package models

import "time"

// Goal is a named learning objective. Courses reference goals by label,
// so Label must stay globally unique; renames that would collide become
// merges instead.
type Goal struct {
	ID          string `gorm:"primaryKey"`
	Label       string `gorm:"uniqueIndex"`
	Description string
	CreatedAt   time.Time
}

// GoalCourse is the persisted goal→course relation row. It duplicates
// the course status so goal stats survive a cold start without a join.
type GoalCourse struct {
	CourseID  string `gorm:"primaryKey"`
	GoalLabel string `gorm:"index"`
	Status    CourseStatus
}
