package store

import (
	"sort"
	"strings"

	"learnloom/backend/models"
)

func (s *Store) Outline(id string) (models.Outline, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.outlines[id]
	if !ok {
		return models.Outline{}, false
	}
	return cloneOutline(o), true
}

func (s *Store) OutlineByCourse(courseID string) (models.Outline, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.outlines {
		if o.CourseID == courseID {
			return cloneOutline(o), true
		}
	}
	return models.Outline{}, false
}

// SuggestedOutlines returns suggested outlines newest-first. A limit
// of zero or less returns all of them.
func (s *Store) SuggestedOutlines(limit int) []models.Outline {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Outline
	for _, o := range s.outlines {
		if o.Status == models.OutlineSuggested {
			out = append(out, cloneOutline(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) Course(id string) (models.Course, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[id]
	if !ok {
		return models.Course{}, false
	}
	return cloneCourse(c), true
}

func (s *Store) CoursesByStatus(status models.CourseStatus) []models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Course
	for _, c := range s.courses {
		if c.Status == status {
			out = append(out, cloneCourse(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) CoursesByGoal(label string) []models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Course
	for _, c := range s.courses {
		if c.Goal == label {
			out = append(out, cloneCourse(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PendingCourses returns completed courses whose goal label is empty
// or whitespace-only. The label check is the only place that trims:
// the goal index keys on raw labels.
func (s *Store) PendingCourses() []models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Course
	for _, c := range s.courses {
		if c.Status == models.CourseCompleted && strings.TrimSpace(c.Goal) == "" {
			out = append(out, cloneCourse(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) PendingCoursesCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, c := range s.courses {
		if c.Status == models.CourseCompleted && strings.TrimSpace(c.Goal) == "" {
			count++
		}
	}
	return count
}

func (s *Store) Module(id string) (models.Module, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.modules[id]
	if !ok {
		return models.Module{}, false
	}
	return *m, true
}

// ModulesByCourse returns a course's modules ordered by Idx.
func (s *Store) ModulesByCourse(courseID string) []models.Module {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Module
	for _, m := range s.modules {
		if m.CourseID == courseID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Idx < out[j].Idx })
	return out
}

func (s *Store) GoalByLabel(label string) (models.Goal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[label]
	if !ok {
		return models.Goal{}, false
	}
	return *g, true
}

func (s *Store) Goals() []models.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func (s *Store) Relation(courseID string) (models.GoalCourse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.relations[courseID]
	if !ok {
		return models.GoalCourse{}, false
	}
	return *r, true
}

// GoalStats is the per-goal view served to the UI, backed by the
// derived index rather than table scans.
type GoalStats struct {
	Goal      models.Goal
	Completed int
	Started   int
	Suggested int
}

func (s *Store) GoalsWithStats() []GoalStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]GoalStats, 0, len(s.goals))
	for label, g := range s.goals {
		stats := GoalStats{Goal: *g}
		if b, ok := s.index[label]; ok {
			stats.Completed = len(b.Completed)
			stats.Started = len(b.Started)
			stats.Suggested = len(b.Suggested)
		}
		out = append(out, stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Goal.Label < out[j].Goal.Label })
	return out
}
