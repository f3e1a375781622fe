package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"learnloom/backend/chat"
	"learnloom/backend/generation"
	"learnloom/backend/learn"
	"learnloom/backend/models"
	"learnloom/backend/routes"
	"learnloom/backend/store"
)

type stubService struct{}

func (stubService) GenerateOutlines(context.Context, []generation.Conversation, string) ([]generation.OutlineDraft, error) {
	return []generation.OutlineDraft{{Title: "Stub outline"}}, nil
}

func (stubService) GenerateFullCourse(_ context.Context, o models.Outline, _ []generation.Conversation, _ string) (generation.CourseContent, error) {
	return generation.CourseContent{
		Title:   o.Title,
		Modules: []generation.ModuleContent{{Title: "Generated module", EstMinutes: 15}},
	}, nil
}

func (stubService) RegroupCompleted(context.Context, []models.Course) ([]generation.GoalAssignment, error) {
	return nil, nil
}

func newTestApp(t *testing.T) (*fiber.App, *learn.Engine) {
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
		&models.Conversation{},
		&models.Message{},
	))

	st := store.New(db, nil)
	require.NoError(t, st.Load())

	quiet := log.New(io.Discard, "", 0)
	chats := chat.NewStore(db)
	engine := learn.NewEngine(st, stubService{}, chats, quiet, "test-model")

	app := fiber.New()
	routes.SetupRoutes(app, engine, chats, quiet)
	return app, engine
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	result["__status"] = float64(resp.StatusCode)
	return result
}

func TestAddAndListOutlines(t *testing.T) {
	app, _ := newTestApp(t)

	created := postJSON(t, app, "/api/learn/outlines", map[string]interface{}{
		"title": "Intro to SQLite",
		"goal":  "databases",
	})
	assert.Equal(t, float64(fiber.StatusCreated), created["__status"])
	data := created["data"].(map[string]interface{})
	assert.NotEmpty(t, data["ID"])

	req := httptest.NewRequest("GET", "/api/learn/outlines", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listing map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	outlines := listing["outlines"].([]interface{})
	require.Len(t, outlines, 1)
	assert.Equal(t, "Intro to SQLite", outlines[0].(map[string]interface{})["Title"])
}

func TestAddOutlineRequiresTitle(t *testing.T) {
	app, _ := newTestApp(t)

	result := postJSON(t, app, "/api/learn/outlines", map[string]interface{}{"goal": "x"})
	assert.Equal(t, float64(fiber.StatusBadRequest), result["__status"])
}

func TestStartCourseEndpoint(t *testing.T) {
	app, engine := newTestApp(t)

	o, err := engine.AddOutline(models.Outline{Title: "Profiling Go"})
	require.NoError(t, err)

	result := postJSON(t, app, "/api/learn/outlines/"+o.ID+"/start", nil)
	assert.Equal(t, float64(fiber.StatusOK), result["__status"])
	assert.Equal(t, true, result["success"])
	assert.Equal(t, o.CourseID, result["courseId"])
	assert.Equal(t, true, result["needsGeneration"])

	// The shell course is visible immediately.
	req := httptest.NewRequest("GET", "/api/learn/courses/"+o.CourseID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestStartCourseUnknownOutline(t *testing.T) {
	app, _ := newTestApp(t)

	result := postJSON(t, app, "/api/learn/outlines/nope/start", nil)
	assert.Equal(t, float64(fiber.StatusNotFound), result["__status"])
}

func TestCourseNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/learn/courses/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSaveCourseAndProgressEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	saved := postJSON(t, app, "/api/learn/courses", map[string]interface{}{
		"title": "Fiber deep dive",
		"goal":  "web",
		"modules": []map[string]interface{}{
			{"title": "Routing", "estMinutes": 10, "lesson": "..."},
		},
	})
	assert.Equal(t, float64(fiber.StatusOK), saved["__status"])
	courseID := saved["courseId"].(string)
	require.NotEmpty(t, courseID)

	req := httptest.NewRequest("GET", "/api/learn/courses/"+courseID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var detail map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	mods := detail["modules"].([]interface{})
	require.Len(t, mods, 1)
	moduleID := mods[0].(map[string]interface{})["ID"].(string)

	progressed := postJSON(t, app,
		"/api/learn/courses/"+courseID+"/modules/"+moduleID+"/progress",
		map[string]interface{}{"progress": "done"},
	)
	assert.Equal(t, float64(fiber.StatusOK), progressed["__status"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/learn/courses/"+courseID, nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	course := detail["course"].(map[string]interface{})
	assert.Equal(t, "completed", course["Status"])
	assert.NotNil(t, course["CompletedAt"])
}

func TestGoalEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	created := postJSON(t, app, "/api/learn/goals", map[string]interface{}{
		"label":       "observability",
		"description": "logs, metrics, traces",
	})
	assert.Equal(t, float64(fiber.StatusCreated), created["__status"])

	req := httptest.NewRequest("GET", "/api/learn/goals", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listing map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	goals := listing["goals"].([]interface{})
	require.Len(t, goals, 1)

	missingLabel := postJSON(t, app, "/api/learn/goals", map[string]interface{}{})
	assert.Equal(t, float64(fiber.StatusBadRequest), missingLabel["__status"])
}

func TestGenerationStatusEndpoint(t *testing.T) {
	app, engine := newTestApp(t)

	engine.Coordinator().SetGenerationError("c9", "model timeout")

	req := httptest.NewRequest("GET", "/api/learn/generation/c9", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var status map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, false, status["generating"])
	assert.Equal(t, "model timeout", status["error"].(map[string]interface{})["message"])
}

func TestPendingCountEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/learn/pending-count", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, float64(0), result["count"])
	assert.Equal(t, false, result["shouldAutoRegroup"])
}
