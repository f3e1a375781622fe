package learn

import (
	"log"
	"sync"

	"learnloom/backend/chat"
	"learnloom/backend/generation"
	"learnloom/backend/models"
	"learnloom/backend/store"
)

// Engine is the learn domain engine: lifecycle transitions, generation
// coordination and the retention/regrouping policy, all backed by one
// entity store. It is an explicitly constructed service; callers get a
// reference, never a package-level singleton.
type Engine struct {
	store  *store.Store
	coord  *Coordinator
	gen    generation.Service
	chats  *chat.Store
	logger *log.Logger
	model  string

	// mu serializes the read-modify-write section of every mutation.
	// Long-running generation calls never run under it.
	mu sync.Mutex
}

func NewEngine(st *store.Store, gen generation.Service, chats *chat.Store, logger *log.Logger, defaultModel string) *Engine {
	return &Engine{
		store:  st,
		coord:  NewCoordinator(),
		gen:    gen,
		chats:  chats,
		logger: logger,
		model:  defaultModel,
	}
}

// Coordinator exposes the generation guard, mostly for tests.
func (e *Engine) Coordinator() *Coordinator {
	return e.coord
}

// CourseWithModules is the detail view of one course.
type CourseWithModules struct {
	Course  models.Course   `json:"course"`
	Modules []models.Module `json:"modules"`
}

func (e *Engine) GetCourseWithModules(courseID string) (CourseWithModules, error) {
	course, ok := e.store.Course(courseID)
	if !ok {
		return CourseWithModules{}, &NotFoundError{Entity: "course", ID: courseID}
	}
	return CourseWithModules{Course: course, Modules: e.store.ModulesByCourse(courseID)}, nil
}

// GetSuggestedOutlines returns the suggestion feed, newest first,
// capped at the retention limit.
func (e *Engine) GetSuggestedOutlines() []models.Outline {
	return e.store.SuggestedOutlines(SuggestedOutlineCap)
}

func (e *Engine) GetStartedCourses() []models.Course {
	return e.store.CoursesByStatus(models.CourseStarted)
}

func (e *Engine) GetCompletedCourses() []models.Course {
	return e.store.CoursesByStatus(models.CourseCompleted)
}

func (e *Engine) GetGoalsWithStats() []store.GoalStats {
	return e.store.GoalsWithStats()
}

func (e *Engine) GetPendingCoursesCount() int {
	return e.store.PendingCoursesCount()
}

func (e *Engine) IsGenerating(courseID string) bool {
	return e.coord.IsGenerating(courseID)
}

func (e *Engine) GetGenerationError(courseID string) *GenerationRecord {
	return e.coord.GenerationError(courseID)
}

func (e *Engine) logf(format string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}
