package learn_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnloom/backend/learn"
	"learnloom/backend/models"
)

func TestSuggestionFeedCappedAtNine(t *testing.T) {
	eng, st := newTestEngine(t, &fakeService{})

	base := time.Now()
	var ids []string
	for i := 0; i < 12; i++ {
		o, err := eng.AddOutline(models.Outline{
			Title:     fmt.Sprintf("Outline %02d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}

	feed := eng.GetSuggestedOutlines()
	require.Len(t, feed, learn.SuggestedOutlineCap)

	// The newest nine survive, oldest-first insertions are gone.
	assert.Equal(t, "Outline 11", feed[0].Title)
	assert.Equal(t, "Outline 03", feed[len(feed)-1].Title)
	for _, oldID := range ids[:3] {
		_, ok := st.Outline(oldID)
		assert.False(t, ok)
	}
}

func TestCleanupSuggestedUnderCapIsNoop(t *testing.T) {
	eng, _ := newTestEngine(t, &fakeService{})

	for i := 0; i < 5; i++ {
		addSuggestedOutline(t, eng, fmt.Sprintf("Outline %d", i))
	}

	assert.Equal(t, 0, eng.CleanupSuggested())
	assert.Len(t, eng.GetSuggestedOutlines(), 5)
}

func TestCleanupSuggestedIgnoresNonSuggested(t *testing.T) {
	eng, st := newTestEngine(t, &fakeService{})

	base := time.Now().Add(-time.Hour)

	// An ancient saved outline and a started one must never be swept.
	saved, err := eng.AddOutline(models.Outline{Title: "Saved long ago", CreatedAt: base})
	require.NoError(t, err)
	require.NoError(t, eng.SaveOutline(saved.ID))

	started, err := eng.AddOutline(models.Outline{Title: "Started long ago", CreatedAt: base})
	require.NoError(t, err)
	_, err = eng.StartCourse(started.ID)
	require.NoError(t, err)

	for i := 0; i < 11; i++ {
		_, err := eng.AddOutline(models.Outline{
			Title:     fmt.Sprintf("Fresh %02d", i),
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	assert.Len(t, eng.GetSuggestedOutlines(), learn.SuggestedOutlineCap)

	got, ok := st.Outline(saved.ID)
	require.True(t, ok)
	assert.Equal(t, models.OutlineSaved, got.Status)
	got, ok = st.Outline(started.ID)
	require.True(t, ok)
	assert.Equal(t, models.OutlineStarted, got.Status)
}
