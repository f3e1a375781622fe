package learn_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnloom/backend/generation"
	"learnloom/backend/learn"
	"learnloom/backend/models"
	"learnloom/backend/store"
)

func completeCourse(t *testing.T, st *store.Store, id, goal string) {
	t.Helper()
	now := time.Now()
	st.UpsertCourse(models.Course{
		ID:           id,
		Title:        "course " + id,
		Goal:         goal,
		Status:       models.CourseCompleted,
		ModuleIDs:    []string{},
		Progress:     map[string]models.ModuleProgress{},
		CompletedVia: models.CompletedViaSelfReport,
		CreatedAt:    now,
		CompletedAt:  &now,
	})
}

func TestCreateGoal(t *testing.T) {
	eng, st := newTestEngine(t, &fakeService{})

	g, err := eng.CreateGoal("distributed systems", "consensus and friends")
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)

	// Creating the same label again returns the existing goal.
	again, err := eng.CreateGoal("distributed systems", "other text")
	require.NoError(t, err)
	assert.Equal(t, g.ID, again.ID)

	_, err = eng.CreateGoal("", "")
	require.ErrorIs(t, err, learn.ErrEmptyLabel)

	_, ok := st.GoalByLabel("distributed systems")
	assert.True(t, ok)
}

func TestRenameGoalRepointsCourses(t *testing.T) {
	eng, st := newTestEngine(t, &fakeService{})

	_, err := eng.CreateGoal("db", "")
	require.NoError(t, err)
	completeCourse(t, st, "c1", "db")
	completeCourse(t, st, "c2", "db")

	require.NoError(t, eng.RenameGoal("db", "databases"))

	_, ok := st.GoalByLabel("db")
	assert.False(t, ok)
	_, ok = st.GoalByLabel("databases")
	assert.True(t, ok)
	assert.Len(t, st.CoursesByGoal("databases"), 2)
	assert.Empty(t, st.CoursesByGoal("db"))
}

func TestRenameGoalMergesIntoExistingLabel(t *testing.T) {
	eng, st := newTestEngine(t, &fakeService{})

	a, err := eng.CreateGoal("ml", "")
	require.NoError(t, err)
	b, err := eng.CreateGoal("machine learning", "")
	require.NoError(t, err)

	completeCourse(t, st, "c1", "ml")
	completeCourse(t, st, "c2", "ml")
	completeCourse(t, st, "c3", "machine learning")

	require.NoError(t, eng.RenameGoal("ml", "machine learning"))

	// A's row is gone, B survives, all of A's courses moved under B.
	_, ok := st.GoalByLabel("ml")
	assert.False(t, ok)
	surviving, ok := st.GoalByLabel("machine learning")
	require.True(t, ok)
	assert.Equal(t, b.ID, surviving.ID)
	assert.NotEqual(t, a.ID, surviving.ID)
	assert.Empty(t, st.CoursesByGoal("ml"))
	assert.Len(t, st.CoursesByGoal("machine learning"), 3)
}

func TestRenameGoalNotFound(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeService{})

	var notFound *learn.NotFoundError
	require.ErrorAs(t, eng.RenameGoal("ghost", "anything"), &notFound)
	require.ErrorIs(t, eng.RenameGoal("ghost", ""), learn.ErrEmptyLabel)
}

func TestDeleteGoalLeavesCoursesPending(t *testing.T) {
	eng, st := newTestEngine(t, &fakeService{})

	_, err := eng.CreateGoal("rust", "")
	require.NoError(t, err)
	completeCourse(t, st, "c1", "rust")
	completeCourse(t, st, "c2", "rust")

	require.NoError(t, eng.DeleteGoal("rust"))

	_, ok := st.GoalByLabel("rust")
	assert.False(t, ok)
	for _, id := range []string{"c1", "c2"} {
		c, ok := st.Course(id)
		require.True(t, ok)
		assert.Equal(t, "", c.Goal)
	}
	assert.Equal(t, 2, eng.GetPendingCoursesCount())
}

func TestUpdateCourseGoalDropsAbandonedGoal(t *testing.T) {
	eng, st := newTestEngine(t, &fakeService{})

	completeCourse(t, st, "c1", "")
	require.NoError(t, eng.UpdateCourseGoal("c1", "lonely goal"))
	_, ok := st.GoalByLabel("lonely goal")
	require.True(t, ok)

	// Moving the only course away deletes the abandoned goal row.
	require.NoError(t, eng.UpdateCourseGoal("c1", "new home"))
	_, ok = st.GoalByLabel("lonely goal")
	assert.False(t, ok)
	_, ok = st.GoalByLabel("new home")
	assert.True(t, ok)
}

func TestPendingCountAndAutoRegroupTrigger(t *testing.T) {
	eng, st := newTestEngine(t, &fakeService{})

	completeCourse(t, st, "c1", "")
	completeCourse(t, st, "c2", " \t ")
	assert.Equal(t, 2, eng.GetPendingCoursesCount())
	assert.False(t, eng.ShouldTriggerAutoRegroup())

	completeCourse(t, st, "c3", "")
	assert.Equal(t, 3, eng.GetPendingCoursesCount())
	assert.True(t, eng.ShouldTriggerAutoRegroup())
}

func TestAutoRegroupAppliesAssignments(t *testing.T) {
	svc := &fakeService{assignments: []generation.GoalAssignment{
		{CourseID: "c1", GoalLabel: "systems"},
		{CourseID: "c2", GoalLabel: "systems"},
		{CourseID: "c3", GoalLabel: "  "}, // blank labels are skipped
	}}
	eng, st := newTestEngine(t, svc)

	completeCourse(t, st, "c1", "")
	completeCourse(t, st, "c2", "")
	completeCourse(t, st, "c3", "")

	require.NoError(t, eng.AutoRegroup(context.Background()))

	assert.Len(t, svc.regroupSeen, 3)
	c1, _ := st.Course("c1")
	assert.Equal(t, "systems", c1.Goal)
	c3, _ := st.Course("c3")
	assert.Equal(t, "", c3.Goal)
	_, ok := st.GoalByLabel("systems")
	assert.True(t, ok)
	assert.Equal(t, 1, eng.GetPendingCoursesCount())
}

func TestAutoRegroupGuardRejectsConcurrentRun(t *testing.T) {
	eng, st := newTestEngine(t, &fakeService{})
	completeCourse(t, st, "c1", "")

	require.True(t, eng.Coordinator().BeginAutoRegroup())
	defer eng.Coordinator().EndAutoRegroup()

	var busy *learn.AlreadyInProgressError
	require.ErrorAs(t, eng.AutoRegroup(context.Background()), &busy)
}

func TestAlreadyKnowSwallowsRegroupFailure(t *testing.T) {
	svc := &fakeService{regroupErr: errors.New("model unavailable")}
	eng, st := newTestEngine(t, svc)

	completeCourse(t, st, "c1", "")
	completeCourse(t, st, "c2", "")

	o := addSuggestedOutline(t, eng, "Goroutines")
	courseID, err := eng.AlreadyKnow(context.Background(), o.ID)
	require.NoError(t, err, "regroup failure must not reach the user action")
	require.NotEmpty(t, courseID)

	assert.Equal(t, 1, svc.calls())
	assert.False(t, eng.Coordinator().IsAutoRegrouping(), "flag must clear after failure")
}
