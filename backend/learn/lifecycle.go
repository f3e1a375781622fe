package learn

import (
	"context"
	"time"

	"github.com/google/uuid"

	"learnloom/backend/models"
)

// StartResult reports what StartCourse did. NeedsGeneration is true
// when a fresh shell course was created and content generation should
// follow.
type StartResult struct {
	CourseID        string `json:"courseId"`
	NeedsGeneration bool   `json:"needsGeneration"`
}

// AddOutline inserts a new outline into the suggestion feed, minting
// ids as needed, and enforces the feed cap.
func (e *Engine) AddOutline(o models.Outline) (models.Outline, error) {
	e.mu.Lock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CourseID == "" {
		o.CourseID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = models.OutlineSuggested
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	e.store.UpsertOutline(o)
	e.mu.Unlock()

	e.CleanupSuggested()
	return o, nil
}

// SaveOutline moves a suggested outline to saved. Terminal statuses
// absorb the call; re-saving is a no-op.
func (e *Engine) SaveOutline(outlineID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.store.Outline(outlineID)
	if !ok {
		return &NotFoundError{Entity: "outline", ID: outlineID}
	}
	if o.Status != models.OutlineSuggested {
		return nil
	}
	o.Status = models.OutlineSaved
	e.store.UpsertOutline(o)
	return nil
}

// DismissOutline drops a suggested or saved outline from the feed.
// Started and terminal outlines are left untouched.
func (e *Engine) DismissOutline(outlineID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.store.Outline(outlineID)
	if !ok {
		return &NotFoundError{Entity: "outline", ID: outlineID}
	}
	if o.Status != models.OutlineSuggested && o.Status != models.OutlineSaved {
		return nil
	}
	o.Status = models.OutlineDismissed
	e.store.UpsertOutline(o)
	return nil
}

// StartCourse starts an outline. If its course already exists the call
// is idempotent and returns the same course id; otherwise a shell
// course (started, zero modules) is persisted synchronously so the UI
// can show progress before generation has produced anything. Dismissed
// outlines absorb the call: nothing is created and the result is empty.
func (e *Engine) StartCourse(outlineID string) (StartResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.store.Outline(outlineID)
	if !ok {
		return StartResult{}, &NotFoundError{Entity: "outline", ID: outlineID}
	}
	if o.Status == models.OutlineDismissed {
		return StartResult{}, nil
	}
	if o.CourseID == "" {
		o.CourseID = uuid.NewString()
	}

	if course, exists := e.store.Course(o.CourseID); exists {
		// Completed is absorbing; a started course needs no change.
		if o.Status != models.OutlineStarted && o.Status != models.OutlineCompleted {
			o.Status = models.OutlineStarted
			e.store.UpsertOutline(o)
		}
		return StartResult{CourseID: course.ID, NeedsGeneration: false}, nil
	}

	shell := models.Course{
		ID:        o.CourseID,
		Title:     o.Title,
		Goal:      o.Goal,
		ModuleIDs: []string{},
		Status:    models.CourseStarted,
		Progress:  map[string]models.ModuleProgress{},
		CreatedAt: time.Now(),
	}
	e.store.UpsertCourse(shell)

	o.Status = models.OutlineStarted
	e.store.UpsertOutline(o)

	return StartResult{CourseID: shell.ID, NeedsGeneration: true}, nil
}

// AlreadyKnow completes an outline via self report. A course is
// created if none exists yet; afterwards the auto-regroup trigger is
// evaluated, since self-reported courses usually have no goal.
func (e *Engine) AlreadyKnow(ctx context.Context, outlineID string) (string, error) {
	courseID, err := e.alreadyKnow(outlineID)
	if err != nil || courseID == "" {
		return courseID, err
	}
	e.maybeAutoRegroup(ctx)
	return courseID, nil
}

func (e *Engine) alreadyKnow(outlineID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.store.Outline(outlineID)
	if !ok {
		return "", &NotFoundError{Entity: "outline", ID: outlineID}
	}
	if o.Status == models.OutlineDismissed {
		return "", nil
	}
	if o.CourseID == "" {
		o.CourseID = uuid.NewString()
	}

	now := time.Now()
	course, exists := e.store.Course(o.CourseID)
	if !exists {
		course = models.Course{
			ID:        o.CourseID,
			Title:     o.Title,
			Goal:      o.Goal,
			ModuleIDs: []string{},
			Progress:  map[string]models.ModuleProgress{},
			CreatedAt: now,
		}
	}
	course.CompletedVia = models.CompletedViaSelfReport
	course.Status = models.CourseCompleted
	if course.CompletedAt == nil {
		course.CompletedAt = &now
	}
	e.store.UpsertCourse(course)

	if course.Goal != "" {
		if _, ok := e.store.GoalByLabel(course.Goal); !ok {
			e.store.UpsertGoal(models.Goal{
				ID:        uuid.NewString(),
				Label:     course.Goal,
				CreatedAt: now,
			})
		}
		e.store.UpsertRelation(models.GoalCourse{
			CourseID:  course.ID,
			GoalLabel: course.Goal,
			Status:    models.CourseCompleted,
		})
	}

	o.Status = models.OutlineCompleted
	e.store.UpsertOutline(o)

	return course.ID, nil
}

// SaveModuleInput is one module in a course save. A missing ID means
// the module is new and gets a generated one.
type SaveModuleInput struct {
	ID         string                `json:"id"`
	Title      string                `json:"title"`
	EstMinutes int                   `json:"estMinutes"`
	Lesson     string                `json:"lesson"`
	MicroTask  string                `json:"microTask"`
	Quiz       []models.QuizQuestion `json:"quiz"`
	Refs       []string              `json:"refs"`
}

// SaveCourseInput is the payload for SaveCourse. Status may be left
// empty to derive it from module progress.
type SaveCourseInput struct {
	CourseID string              `json:"courseId"`
	Title    string              `json:"title"`
	Goal     string              `json:"goal"`
	Status   models.CourseStatus `json:"status"`
	Modules  []SaveModuleInput   `json:"modules"`
}

// SaveCourse is the only way full module content enters the system.
// Course, modules, the mirrored outline and the optional goal plus its
// relation row are committed in a single transaction; on success the
// mirror is rebuilt from the database and any recorded generation
// error for the course is cleared.
func (e *Engine) SaveCourse(input SaveCourseInput) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	courseID := input.CourseID
	if courseID == "" {
		courseID = uuid.NewString()
	}
	now := time.Now()

	existing, hadCourse := e.store.Course(courseID)

	mods := make([]models.Module, 0, len(input.Modules))
	moduleIDs := make([]string, 0, len(input.Modules))
	progress := make(map[string]models.ModuleProgress, len(input.Modules))
	for i, in := range input.Modules {
		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}
		mods = append(mods, models.Module{
			ID:         id,
			CourseID:   courseID,
			Idx:        i,
			Title:      in.Title,
			EstMinutes: in.EstMinutes,
			Lesson:     in.Lesson,
			MicroTask:  in.MicroTask,
			Quiz:       in.Quiz,
			Refs:       in.Refs,
		})
		moduleIDs = append(moduleIDs, id)
		if p, ok := existing.Progress[id]; ok {
			progress[id] = p
		} else {
			progress[id] = models.ProgressNotStarted
		}
	}

	course := models.Course{
		ID:        courseID,
		Title:     input.Title,
		Goal:      input.Goal,
		ModuleIDs: moduleIDs,
		Progress:  progress,
		CreatedAt: now,
	}
	if hadCourse {
		course.CreatedAt = existing.CreatedAt
		course.CompletedVia = existing.CompletedVia
		course.CompletedAt = existing.CompletedAt
	}
	if input.Status == models.CourseCompleted {
		course.Status = models.CourseCompleted
	} else {
		course.Status = course.DerivedStatus()
	}
	if course.Status == models.CourseCompleted && course.CompletedAt == nil {
		course.CompletedAt = &now
	}
	if course.Status != models.CourseCompleted {
		course.CompletedAt = nil
	}

	var outline *models.Outline
	if o, ok := e.store.OutlineByCourse(courseID); ok {
		if course.Status == models.CourseCompleted {
			o.Status = models.OutlineCompleted
		} else {
			o.Status = models.OutlineStarted
		}
		outline = &o
	}

	var goal *models.Goal
	var rel *models.GoalCourse
	if course.Goal != "" {
		if g, ok := e.store.GoalByLabel(course.Goal); ok {
			goal = &g
		} else {
			goal = &models.Goal{ID: uuid.NewString(), Label: course.Goal, CreatedAt: now}
		}
		rel = &models.GoalCourse{CourseID: courseID, GoalLabel: course.Goal, Status: course.Status}
	}

	if err := e.store.SaveCourseGraph(course, mods, outline, goal, rel); err != nil {
		return "", &TransactionError{Op: "save course", Err: err}
	}

	e.coord.SetGenerationError(courseID, "")
	return courseID, nil
}

// UpdateModuleProgress records progress for one module and recomputes
// the course status. A module id the course does not list is a no-op:
// generation races can hand the UI a stale module reference.
func (e *Engine) UpdateModuleProgress(courseID, moduleID string, progress models.ModuleProgress) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	course, ok := e.store.Course(courseID)
	if !ok {
		return &NotFoundError{Entity: "course", ID: courseID}
	}

	listed := false
	for _, id := range course.ModuleIDs {
		if id == moduleID {
			listed = true
			break
		}
	}
	if !listed {
		return nil
	}

	course.Progress[moduleID] = progress
	prev := course.Status
	course.Status = course.DerivedStatus()
	if course.Status == models.CourseCompleted && prev != models.CourseCompleted {
		now := time.Now()
		course.CompletedAt = &now
	}
	if course.Status != models.CourseCompleted {
		course.CompletedAt = nil
	}
	e.store.UpsertCourse(course)

	if course.Status != prev {
		e.propagateStatus(course)
	}
	return nil
}

// UpdateCourseStatus overrides the course status directly.
func (e *Engine) UpdateCourseStatus(courseID string, status models.CourseStatus) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	course, ok := e.store.Course(courseID)
	if !ok {
		return &NotFoundError{Entity: "course", ID: courseID}
	}
	if course.Status == status {
		return nil
	}

	course.Status = status
	if status == models.CourseCompleted {
		if course.CompletedAt == nil {
			now := time.Now()
			course.CompletedAt = &now
		}
	} else {
		course.CompletedAt = nil
	}
	e.store.UpsertCourse(course)
	e.propagateStatus(course)
	return nil
}

// DeleteCourse removes a course with its modules, outline and goal
// relation. The goal row survives: other courses may share its label.
func (e *Engine) DeleteCourse(courseID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.store.Course(courseID); !ok {
		return &NotFoundError{Entity: "course", ID: courseID}
	}
	e.store.DeleteCourseCascade(courseID)
	return nil
}

// propagateStatus mirrors a course status change onto the outline
// sharing the course id and the goal relation row.
func (e *Engine) propagateStatus(course models.Course) {
	if o, ok := e.store.OutlineByCourse(course.ID); ok {
		if course.Status == models.CourseCompleted {
			o.Status = models.OutlineCompleted
		} else {
			o.Status = models.OutlineStarted
		}
		e.store.UpsertOutline(o)
	}
	if rel, ok := e.store.Relation(course.ID); ok {
		rel.Status = course.Status
		e.store.UpsertRelation(rel)
	}
}
