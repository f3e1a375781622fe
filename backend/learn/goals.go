package learn

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"learnloom/backend/models"
)

// autoRegroupThreshold: regrouping kicks in once strictly more than
// this many completed courses sit without a goal.
const autoRegroupThreshold = 2

// CreateGoal registers a goal label. Creating an existing label
// returns the existing goal unchanged.
func (e *Engine) CreateGoal(label, description string) (models.Goal, error) {
	if label == "" {
		return models.Goal{}, ErrEmptyLabel
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if g, ok := e.store.GoalByLabel(label); ok {
		return g, nil
	}
	g := models.Goal{
		ID:          uuid.NewString(),
		Label:       label,
		Description: description,
		CreatedAt:   time.Now(),
	}
	e.store.UpsertGoal(g)
	return g, nil
}

// RenameGoal changes a goal's label and repoints every course under
// it. If the target label already names another goal the rename
// becomes a merge: the old goal's courses move under the surviving
// goal and the old row is deleted. Labels never collide.
func (e *Engine) RenameGoal(oldLabel, newLabel string) error {
	if newLabel == "" {
		return ErrEmptyLabel
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if oldLabel == newLabel {
		return nil
	}
	g, ok := e.store.GoalByLabel(oldLabel)
	if !ok {
		return &NotFoundError{Entity: "goal", ID: oldLabel}
	}

	_, merge := e.store.GoalByLabel(newLabel)

	// Goal state is derived from a fresh read, not from cached
	// references: CoursesByGoal scans the live mirror.
	for _, c := range e.store.CoursesByGoal(oldLabel) {
		c.Goal = newLabel
		e.store.UpsertCourse(c)
		if rel, ok := e.store.Relation(c.ID); ok {
			rel.GoalLabel = newLabel
			rel.Status = c.Status
			e.store.UpsertRelation(rel)
		}
	}

	e.store.DeleteGoal(oldLabel)
	if !merge {
		g.Label = newLabel
		e.store.UpsertGoal(g)
	}
	return nil
}

// DeleteGoal removes a goal and clears its label from every course
// under it, leaving them pending. Unlike a merge, delete never assigns
// a surviving label.
func (e *Engine) DeleteGoal(label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.store.GoalByLabel(label); !ok {
		return &NotFoundError{Entity: "goal", ID: label}
	}

	for _, c := range e.store.CoursesByGoal(label) {
		c.Goal = ""
		e.store.UpsertCourse(c)
		e.store.DeleteRelation(c.ID)
	}
	e.store.DeleteGoal(label)
	return nil
}

// UpdateCourseGoal assigns a course to a goal label, creating the goal
// on first use and deleting the old goal once its last course moves
// away. An empty label makes the course pending.
func (e *Engine) UpdateCourseGoal(courseID, label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.updateCourseGoalLocked(courseID, label)
}

func (e *Engine) updateCourseGoalLocked(courseID, label string) error {
	course, ok := e.store.Course(courseID)
	if !ok {
		return &NotFoundError{Entity: "course", ID: courseID}
	}

	oldLabel := course.Goal
	if oldLabel == label {
		return nil
	}

	course.Goal = label
	e.store.UpsertCourse(course)

	if label != "" {
		if _, ok := e.store.GoalByLabel(label); !ok {
			e.store.UpsertGoal(models.Goal{
				ID:        uuid.NewString(),
				Label:     label,
				CreatedAt: time.Now(),
			})
		}
		e.store.UpsertRelation(models.GoalCourse{
			CourseID:  courseID,
			GoalLabel: label,
			Status:    course.Status,
		})
	} else {
		e.store.DeleteRelation(courseID)
	}

	if oldLabel != "" && len(e.store.CoursesByGoal(oldLabel)) == 0 {
		e.store.DeleteGoal(oldLabel)
	}
	return nil
}

// ShouldTriggerAutoRegroup reports whether enough pending completed
// courses have accumulated to justify a regroup call.
func (e *Engine) ShouldTriggerAutoRegroup() bool {
	return e.store.PendingCoursesCount() > autoRegroupThreshold
}

// AutoRegroup asks the generation service to assign goals to pending
// completed courses and applies the returned assignments. Guarded by
// the coordinator's single regroup slot; a second call while one is in
// flight does nothing.
func (e *Engine) AutoRegroup(ctx context.Context) error {
	if !e.coord.BeginAutoRegroup() {
		return &AlreadyInProgressError{Op: "auto-regroup", Key: "completed-courses"}
	}
	defer e.coord.EndAutoRegroup()

	pending := e.store.PendingCourses()
	if len(pending) == 0 {
		return nil
	}

	assignments, err := e.gen.RegroupCompleted(ctx, pending)
	if err != nil {
		return &GenerationError{Err: err}
	}

	for _, a := range assignments {
		if strings.TrimSpace(a.GoalLabel) == "" {
			continue
		}
		if err := e.UpdateCourseGoal(a.CourseID, a.GoalLabel); err != nil {
			e.logf("apply regroup assignment for course %s: %v", a.CourseID, err)
		}
	}
	return nil
}

// maybeAutoRegroup runs the trigger check after operations that can
// create pending completed courses. Regrouping is best-effort
// background work: failures are logged and swallowed, never returned
// to the action that tripped the trigger.
func (e *Engine) maybeAutoRegroup(ctx context.Context) {
	if !e.ShouldTriggerAutoRegroup() {
		return
	}
	if err := e.AutoRegroup(ctx); err != nil {
		var busy *AlreadyInProgressError
		if !errors.As(err, &busy) {
			e.logf("auto-regroup: %v", err)
		}
	}
}
