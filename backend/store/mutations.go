package store

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learnloom/backend/models"
)

func upsert[T any](db *gorm.DB, row *T) error {
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error
}

// UpsertOutline writes an outline through to the database and patches
// the mirror. Writing an existing id overwrites, which keeps feed
// refreshes idempotent.
func (s *Store) UpsertOutline(o models.Outline) {
	s.persist("outline", func(db *gorm.DB) error {
		row := o
		return upsert(db, &row)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.outlines[o.ID] = &o
	s.rebuildIndexLocked()
}

// DeleteOutlines removes outlines by id (used by the retention sweep).
func (s *Store) DeleteOutlines(ids []string) {
	if len(ids) == 0 {
		return
	}
	s.persist("delete outlines", func(db *gorm.DB) error {
		return db.Delete(&models.Outline{}, "id IN ?", ids).Error
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.outlines, id)
	}
	s.rebuildIndexLocked()
}

func (s *Store) UpsertCourse(c models.Course) {
	s.persist("course", func(db *gorm.DB) error {
		row := c
		return upsert(db, &row)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[c.ID] = &c
	s.rebuildIndexLocked()
}

func (s *Store) UpsertModule(m models.Module) {
	s.persist("module", func(db *gorm.DB) error {
		row := m
		return upsert(db, &row)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[m.ID] = &m
}

func (s *Store) UpsertGoal(g models.Goal) {
	s.persist("goal", func(db *gorm.DB) error {
		row := g
		return upsert(db, &row)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[g.Label] = &g
	s.rebuildIndexLocked()
}

func (s *Store) DeleteGoal(label string) {
	s.persist("delete goal", func(db *gorm.DB) error {
		return db.Delete(&models.Goal{}, "label = ?", label).Error
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.goals, label)
	s.rebuildIndexLocked()
}

func (s *Store) UpsertRelation(r models.GoalCourse) {
	s.persist("goal relation", func(db *gorm.DB) error {
		row := r
		return upsert(db, &row)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.relations[r.CourseID] = &r
}

func (s *Store) DeleteRelation(courseID string) {
	s.persist("delete goal relation", func(db *gorm.DB) error {
		return db.Delete(&models.GoalCourse{}, "course_id = ?", courseID).Error
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.relations, courseID)
}

// DeleteCourseCascade removes a course together with its modules, its
// outline and its goal relation. Goal rows are left alone: other
// courses may share the label.
func (s *Store) DeleteCourseCascade(courseID string) {
	s.persist("delete course cascade", func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&models.Module{}, "course_id = ?", courseID).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Outline{}, "course_id = ?", courseID).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.GoalCourse{}, "course_id = ?", courseID).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Course{}, "id = ?", courseID).Error
		})
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.courses, courseID)
	delete(s.relations, courseID)
	for id, m := range s.modules {
		if m.CourseID == courseID {
			delete(s.modules, id)
		}
	}
	for id, o := range s.outlines {
		if o.CourseID == courseID {
			delete(s.outlines, id)
		}
	}
	s.rebuildIndexLocked()
}

// SaveCourseGraph commits a course, its modules, the mirrored outline
// and the optional goal plus relation row in one database transaction.
// A nil relation clears any existing relation row for the course, so a
// save that drops the goal label leaves no stale goal linkage behind.
// Unlike the single-row mutations this is strictly transactional: on
// failure nothing changes, in memory or on disk. On success the whole
// mirror is rebuilt from the database rather than patched.
func (s *Store) SaveCourseGraph(course models.Course, mods []models.Module, outline *models.Outline, goal *models.Goal, rel *models.GoalCourse) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, &course); err != nil {
			return fmt.Errorf("course: %w", err)
		}
		for i := range mods {
			if err := upsert(tx, &mods[i]); err != nil {
				return fmt.Errorf("module %s: %w", mods[i].ID, err)
			}
		}
		if outline != nil {
			if err := upsert(tx, outline); err != nil {
				return fmt.Errorf("outline: %w", err)
			}
		}
		if goal != nil {
			if err := upsert(tx, goal); err != nil {
				return fmt.Errorf("goal: %w", err)
			}
		}
		if rel != nil {
			if err := upsert(tx, rel); err != nil {
				return fmt.Errorf("goal relation: %w", err)
			}
		} else if err := tx.Delete(&models.GoalCourse{}, "course_id = ?", course.ID).Error; err != nil {
			return fmt.Errorf("clear goal relation: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.Load()
}
