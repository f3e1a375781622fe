package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"learnloom/backend/chat"
	"learnloom/backend/controllers"
	"learnloom/backend/learn"
)

func SetupRoutes(app *fiber.App, engine *learn.Engine, chats *chat.Store, logger *log.Logger) {
	// Learn routes
	learnController := controllers.NewLearnController(engine, logger)
	api := app.Group("/api/learn")

	outlines := api.Group("/outlines")
	outlines.Get("/", learnController.GetSuggestedOutlines)
	outlines.Post("/", learnController.AddOutline)
	outlines.Post("/refresh", learnController.RefreshSuggestions)
	outlines.Post("/:id/save", learnController.SaveOutline)
	outlines.Post("/:id/dismiss", learnController.DismissOutline)
	outlines.Post("/:id/start", learnController.StartCourse)
	outlines.Post("/:id/retry", learnController.RetryGeneration)
	outlines.Post("/:id/already-know", learnController.AlreadyKnow)

	courses := api.Group("/courses")
	courses.Get("/started", learnController.GetStartedCourses)
	courses.Get("/completed", learnController.GetCompletedCourses)
	courses.Post("/", learnController.SaveCourse)
	courses.Get("/:id", learnController.GetCourse)
	courses.Delete("/:id", learnController.DeleteCourse)
	courses.Put("/:id/status", learnController.UpdateCourseStatus)
	courses.Put("/:id/goal", learnController.UpdateCourseGoal)
	courses.Post("/:id/modules/:moduleId/progress", learnController.UpdateModuleProgress)

	goals := api.Group("/goals")
	goals.Get("/", learnController.GetGoals)
	goals.Post("/", learnController.CreateGoal)
	goals.Put("/:label", learnController.RenameGoal)
	goals.Delete("/:label", learnController.DeleteGoal)

	api.Get("/generation/:courseId", learnController.GetGenerationStatus)
	api.Get("/pending-count", learnController.GetPendingCount)
	api.Post("/regroup", learnController.Regroup)

	// Chat routes (read-only)
	chatController := controllers.NewChatController(chats)
	app.Get("/api/chat/conversations", chatController.GetConversations)
	app.Get("/api/chat/conversations/:id", chatController.GetConversation)
}
