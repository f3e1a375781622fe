package learn_test

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"learnloom/backend/generation"
	"learnloom/backend/learn"
	"learnloom/backend/models"
	"learnloom/backend/store"
)

// fakeService scripts the generation backend for tests.
type fakeService struct {
	mu sync.Mutex

	drafts    []generation.OutlineDraft
	draftsErr error

	content    generation.CourseContent
	contentErr error

	assignments  []generation.GoalAssignment
	regroupErr   error
	regroupCalls int
	regroupSeen  []models.Course
}

func (f *fakeService) GenerateOutlines(context.Context, []generation.Conversation, string) ([]generation.OutlineDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draftsErr != nil {
		return nil, f.draftsErr
	}
	return f.drafts, nil
}

func (f *fakeService) GenerateFullCourse(context.Context, models.Outline, []generation.Conversation, string) (generation.CourseContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.contentErr != nil {
		return generation.CourseContent{}, f.contentErr
	}
	return f.content, nil
}

func (f *fakeService) RegroupCompleted(_ context.Context, pending []models.Course) ([]generation.GoalAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regroupCalls++
	f.regroupSeen = pending
	if f.regroupErr != nil {
		return nil, f.regroupErr
	}
	return f.assignments, nil
}

func (f *fakeService) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regroupCalls
}

func newTestEngine(t *testing.T, svc generation.Service) (*learn.Engine, *store.Store) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Outline{},
		&models.Course{},
		&models.Module{},
		&models.Goal{},
		&models.GoalCourse{},
	))

	st := store.New(db, nil)
	require.NoError(t, st.Load())

	eng := learn.NewEngine(st, svc, nil, log.New(io.Discard, "", 0), "test-model")
	return eng, st
}

// addSuggestedOutline seeds one suggested outline and returns it.
func addSuggestedOutline(t *testing.T, eng *learn.Engine, title string) models.Outline {
	t.Helper()
	o, err := eng.AddOutline(models.Outline{Title: title, CreatedAt: time.Now()})
	require.NoError(t, err)
	return o
}
