package learn

import (
	"context"
	"time"

	"github.com/google/uuid"

	"learnloom/backend/generation"
	"learnloom/backend/models"
)

// suggestionFeedKey is the coordinator key guarding batch suggestion
// generation; it shares the per-key discipline of course generation.
const suggestionFeedKey = "suggestion-feed"

// recentConversationLimit bounds how much chat history is handed to
// the generation service as context.
const recentConversationLimit = 10

// GenerateCourseContent fills a shell course by calling the generation
// service and saving the result. Re-entrant calls for the same course
// fail fast with AlreadyInProgressError. On failure the outline rolls
// back to suggested and the error is recorded against the course; the
// shell course itself is never deleted, so retry has a target.
func (e *Engine) GenerateCourseContent(ctx context.Context, outlineID, model string) error {
	o, ok := e.store.Outline(outlineID)
	if !ok {
		return &NotFoundError{Entity: "outline", ID: outlineID}
	}
	if _, ok := e.store.Course(o.CourseID); !ok {
		return &NotFoundError{Entity: "course", ID: o.CourseID}
	}

	if err := e.coord.beginGeneration(o.CourseID); err != nil {
		return err
	}
	defer e.coord.SetGenerating(o.CourseID, false)

	// Starting a (re)try clears the previous failure record.
	e.coord.SetGenerationError(o.CourseID, "")

	convs := e.recentConversations(ctx)
	content, err := e.gen.GenerateFullCourse(ctx, o, convs, e.resolveModel(model))
	if err != nil {
		e.coord.SetGenerationError(o.CourseID, err.Error())
		e.rollbackOutline(outlineID)
		return &GenerationError{CourseID: o.CourseID, Err: err}
	}

	input := SaveCourseInput{
		CourseID: o.CourseID,
		Title:    content.Title,
		Goal:     content.Goal,
		Modules:  make([]SaveModuleInput, 0, len(content.Modules)),
	}
	if input.Title == "" {
		input.Title = o.Title
	}
	if input.Goal == "" {
		input.Goal = o.Goal
	}
	for _, m := range content.Modules {
		input.Modules = append(input.Modules, SaveModuleInput{
			Title:      m.Title,
			EstMinutes: m.EstMinutes,
			Lesson:     m.Lesson,
			MicroTask:  m.MicroTask,
			Quiz:       m.Quiz,
			Refs:       m.Refs,
		})
	}

	if _, err := e.SaveCourse(input); err != nil {
		e.coord.SetGenerationError(o.CourseID, err.Error())
		return err
	}
	return nil
}

// RefreshSuggestions asks the generation service for new outline
// candidates from recent conversations, upserts them as suggested and
// enforces the feed cap. Returns the resulting feed.
func (e *Engine) RefreshSuggestions(ctx context.Context, model string) ([]models.Outline, error) {
	if err := e.coord.beginGeneration(suggestionFeedKey); err != nil {
		return nil, err
	}
	defer e.coord.SetGenerating(suggestionFeedKey, false)

	convs := e.recentConversations(ctx)
	drafts, err := e.gen.GenerateOutlines(ctx, convs, e.resolveModel(model))
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	now := time.Now()
	for _, d := range drafts {
		e.store.UpsertOutline(models.Outline{
			ID:        uuid.NewString(),
			CourseID:  uuid.NewString(),
			Title:     d.Title,
			Goal:      d.Goal,
			Status:    models.OutlineSuggested,
			Questions: d.Questions,
			Modules:   d.Modules,
			CreatedAt: now,
		})
	}

	e.CleanupSuggested()
	return e.GetSuggestedOutlines(), nil
}

func (e *Engine) recentConversations(ctx context.Context) []generation.Conversation {
	if e.chats == nil {
		return nil
	}
	convs, err := e.chats.Recent(ctx, recentConversationLimit)
	if err != nil {
		e.logf("load conversations for generation: %v", err)
		return nil
	}
	return convs
}

func (e *Engine) resolveModel(model string) string {
	if model != "" {
		return model
	}
	return e.model
}

// rollbackOutline returns a failed outline to the suggestion feed so
// the start action can be retried.
func (e *Engine) rollbackOutline(outlineID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o, ok := e.store.Outline(outlineID); ok {
		o.Status = models.OutlineSuggested
		e.store.UpsertOutline(o)
	}
}
