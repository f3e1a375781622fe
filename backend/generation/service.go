package generation

import (
	"context"
	"errors"

	"learnloom/backend/models"
)

// Conversation is the generation context slice handed to the model
// backend: a chat id plus its messages, read-only.
type Conversation struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OutlineDraft is a candidate course skeleton proposed by the model.
type OutlineDraft struct {
	Title     string                 `json:"title"`
	Goal      string                 `json:"goal"`
	Questions []string               `json:"questions"`
	Modules   []models.ModuleSummary `json:"modules"`
}

// ModuleContent is one fully generated lesson.
type ModuleContent struct {
	Title      string                `json:"title"`
	EstMinutes int                   `json:"estMinutes"`
	Lesson     string                `json:"lesson"`
	MicroTask  string                `json:"microTask"`
	Quiz       []models.QuizQuestion `json:"quiz"`
	Refs       []string              `json:"refs"`
}

// CourseContent is the full-course generation result used to fill a
// shell course.
type CourseContent struct {
	Title   string          `json:"title"`
	Goal    string          `json:"goal"`
	Modules []ModuleContent `json:"modules"`
}

// GoalAssignment maps one pending course to a goal label.
type GoalAssignment struct {
	CourseID  string `json:"courseId"`
	GoalLabel string `json:"goalLabel"`
}

// Service is the content-generation boundary. All calls are plain
// request/response; the transport behind them belongs to the embedding
// application, not to this engine.
type Service interface {
	GenerateOutlines(ctx context.Context, convs []Conversation, model string) ([]OutlineDraft, error)
	GenerateFullCourse(ctx context.Context, outline models.Outline, convs []Conversation, model string) (CourseContent, error)
	RegroupCompleted(ctx context.Context, pending []models.Course) ([]GoalAssignment, error)
}

// ErrUnavailable is returned by Unavailable for every call.
var ErrUnavailable = errors.New("generation service not configured")

// Unavailable is the default Service wiring: every call fails until
// the host application plugs in a real backend. Generation failures
// are recorded per course rather than surfaced as fatal errors, so an
// unconfigured backend degrades gracefully.
type Unavailable struct{}

func (Unavailable) GenerateOutlines(context.Context, []Conversation, string) ([]OutlineDraft, error) {
	return nil, ErrUnavailable
}

func (Unavailable) GenerateFullCourse(context.Context, models.Outline, []Conversation, string) (CourseContent, error) {
	return CourseContent{}, ErrUnavailable
}

func (Unavailable) RegroupCompleted(context.Context, []models.Course) ([]GoalAssignment, error) {
	return nil, ErrUnavailable
}
