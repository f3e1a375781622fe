package store

import (
	"fmt"
	"log"
	"sync"

	"gorm.io/gorm"

	"learnloom/backend/models"
)

// GoalBuckets partitions one goal's learning units by state. Completed
// and Started hold course ids, Suggested holds outline ids.
type GoalBuckets struct {
	Completed []string
	Started   []string
	Suggested []string
}

// Store is the normalized in-memory mirror of the learn tables plus a
// derived goal→course index. It is the single source of truth for
// reads; every mutation is written through to the database. Writes are
// best-effort: a failed database write is logged and the in-memory
// mutation still applies, so a local disk problem never blocks the
// session (multi-table saves via SaveCourseGraph are the exception and
// stay strictly transactional).
type Store struct {
	db     *gorm.DB
	logger *log.Logger

	mu        sync.Mutex
	outlines  map[string]*models.Outline
	courses   map[string]*models.Course
	modules   map[string]*models.Module
	goals     map[string]*models.Goal      // keyed by label
	relations map[string]*models.GoalCourse // keyed by course id
	index     map[string]*GoalBuckets
}

func New(db *gorm.DB, logger *log.Logger) *Store {
	return &Store{
		db:        db,
		logger:    logger,
		outlines:  make(map[string]*models.Outline),
		courses:   make(map[string]*models.Course),
		modules:   make(map[string]*models.Module),
		goals:     make(map[string]*models.Goal),
		relations: make(map[string]*models.GoalCourse),
		index:     make(map[string]*GoalBuckets),
	}
}

// Load reads all five tables and swaps the mirror in one critical
// section, so readers never observe a half-rebuilt state.
func (s *Store) Load() error {
	var (
		outlines  []models.Outline
		courses   []models.Course
		modules   []models.Module
		goals     []models.Goal
		relations []models.GoalCourse
	)

	if err := s.db.Find(&outlines).Error; err != nil {
		return fmt.Errorf("load outlines: %w", err)
	}
	if err := s.db.Find(&courses).Error; err != nil {
		return fmt.Errorf("load courses: %w", err)
	}
	if err := s.db.Find(&modules).Error; err != nil {
		return fmt.Errorf("load modules: %w", err)
	}
	if err := s.db.Find(&goals).Error; err != nil {
		return fmt.Errorf("load goals: %w", err)
	}
	if err := s.db.Find(&relations).Error; err != nil {
		return fmt.Errorf("load goal relations: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.outlines = make(map[string]*models.Outline, len(outlines))
	for i := range outlines {
		s.outlines[outlines[i].ID] = &outlines[i]
	}
	s.courses = make(map[string]*models.Course, len(courses))
	for i := range courses {
		s.courses[courses[i].ID] = &courses[i]
	}
	s.modules = make(map[string]*models.Module, len(modules))
	for i := range modules {
		s.modules[modules[i].ID] = &modules[i]
	}
	s.goals = make(map[string]*models.Goal, len(goals))
	for i := range goals {
		s.goals[goals[i].Label] = &goals[i]
	}
	s.relations = make(map[string]*models.GoalCourse, len(relations))
	for i := range relations {
		s.relations[relations[i].CourseID] = &relations[i]
	}

	s.rebuildIndexLocked()
	return nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB exposes the underlying handle for collaborators that share the
// same database file (the read-only chat store).
func (s *Store) DB() *gorm.DB {
	return s.db
}

// persist runs a best-effort write. Durability is per-mutation: on
// failure the session keeps working from the in-memory mirror.
func (s *Store) persist(op string, fn func(db *gorm.DB) error) {
	if err := fn(s.db); err != nil && s.logger != nil {
		s.logger.Printf("persist %s: %v", op, err)
	}
}

// rebuildIndexLocked recomputes the goal→course index wholesale from
// course and outline goal labels. Callers must hold s.mu.
func (s *Store) rebuildIndexLocked() {
	index := make(map[string]*GoalBuckets)
	bucket := func(label string) *GoalBuckets {
		b, ok := index[label]
		if !ok {
			b = &GoalBuckets{}
			index[label] = b
		}
		return b
	}

	for id, c := range s.courses {
		if c.Goal == "" {
			continue
		}
		switch c.Status {
		case models.CourseCompleted:
			b := bucket(c.Goal)
			b.Completed = append(b.Completed, id)
		default:
			b := bucket(c.Goal)
			b.Started = append(b.Started, id)
		}
	}
	for id, o := range s.outlines {
		if o.Goal == "" || o.Status != models.OutlineSuggested {
			continue
		}
		b := bucket(o.Goal)
		b.Suggested = append(b.Suggested, id)
	}

	s.index = index
}

func cloneCourse(c *models.Course) models.Course {
	out := *c
	out.ModuleIDs = append([]string(nil), c.ModuleIDs...)
	out.Progress = make(map[string]models.ModuleProgress, len(c.Progress))
	for k, v := range c.Progress {
		out.Progress[k] = v
	}
	return out
}

func cloneOutline(o *models.Outline) models.Outline {
	out := *o
	out.Questions = append([]string(nil), o.Questions...)
	out.Modules = append([]models.ModuleSummary(nil), o.Modules...)
	return out
}
