package controllers

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"learnloom/backend/learn"
	"learnloom/backend/models"
	"learnloom/backend/utils"
)

type LearnController struct {
	Engine *learn.Engine
	Logger *log.Logger
}

func NewLearnController(engine *learn.Engine, logger *log.Logger) *LearnController {
	return &LearnController{Engine: engine, Logger: logger}
}

// respond maps engine errors onto HTTP statuses.
func (lc *LearnController) respond(c *fiber.Ctx, err error) error {
	var notFound *learn.NotFoundError
	var busy *learn.AlreadyInProgressError
	var txErr *learn.TransactionError
	var genErr *learn.GenerationError

	switch {
	case errors.As(err, &notFound):
		return utils.NotFound(c, err.Error())
	case errors.As(err, &busy):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, learn.ErrEmptyLabel):
		return utils.BadRequest(c, err.Error())
	case errors.As(err, &txErr):
		return utils.InternalServerError(c, err.Error())
	case errors.As(err, &genErr):
		return utils.Error(c, fiber.StatusBadGateway, err)
	default:
		return utils.InternalServerError(c, err.Error())
	}
}

func (lc *LearnController) GetSuggestedOutlines(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"outlines": lc.Engine.GetSuggestedOutlines(),
	})
}

func (lc *LearnController) RefreshSuggestions(c *fiber.Ctx) error {
	var input struct {
		Model string `json:"model"`
	}
	// Body is optional; an empty body means the default model.
	_ = c.BodyParser(&input)

	outlines, err := lc.Engine.RefreshSuggestions(c.Context(), input.Model)
	if err != nil {
		return lc.respond(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"outlines": outlines,
	})
}

func (lc *LearnController) AddOutline(c *fiber.Ctx) error {
	var input struct {
		Title     string                 `json:"title"`
		Goal      string                 `json:"goal"`
		Questions []string               `json:"questions"`
		Modules   []models.ModuleSummary `json:"modules"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	outline, err := lc.Engine.AddOutline(models.Outline{
		Title:     input.Title,
		Goal:      input.Goal,
		Questions: input.Questions,
		Modules:   input.Modules,
	})
	if err != nil {
		return lc.respond(c, err)
	}
	return utils.Created(c, outline)
}

func (lc *LearnController) SaveOutline(c *fiber.Ctx) error {
	if err := lc.Engine.SaveOutline(c.Params("id")); err != nil {
		return lc.respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (lc *LearnController) DismissOutline(c *fiber.Ctx) error {
	if err := lc.Engine.DismissOutline(c.Params("id")); err != nil {
		return lc.respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// StartCourse starts the outline's course and, when a shell course was
// just created, kicks off content generation in the background. The
// response never waits for generation.
func (lc *LearnController) StartCourse(c *fiber.Ctx) error {
	outlineID := c.Params("id")
	var input struct {
		Model string `json:"model"`
	}
	_ = c.BodyParser(&input)

	result, err := lc.Engine.StartCourse(outlineID)
	if err != nil {
		return lc.respond(c, err)
	}

	if result.NeedsGeneration {
		go func() {
			if err := lc.Engine.GenerateCourseContent(context.Background(), outlineID, input.Model); err != nil {
				lc.Logger.Printf("generate course for outline %s: %v", outlineID, err)
			}
		}()
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"courseId":        result.CourseID,
		"needsGeneration": result.NeedsGeneration,
	})
}

// RetryGeneration re-runs content generation for an outline whose
// previous attempt failed.
func (lc *LearnController) RetryGeneration(c *fiber.Ctx) error {
	outlineID := c.Params("id")
	var input struct {
		Model string `json:"model"`
	}
	_ = c.BodyParser(&input)

	if err := lc.Engine.GenerateCourseContent(c.Context(), outlineID, input.Model); err != nil {
		return lc.respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (lc *LearnController) AlreadyKnow(c *fiber.Ctx) error {
	courseID, err := lc.Engine.AlreadyKnow(c.Context(), c.Params("id"))
	if err != nil {
		return lc.respond(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"courseId": courseID,
	})
}

func (lc *LearnController) GetStartedCourses(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"courses": lc.Engine.GetStartedCourses()})
}

func (lc *LearnController) GetCompletedCourses(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"courses": lc.Engine.GetCompletedCourses()})
}

func (lc *LearnController) GetCourse(c *fiber.Ctx) error {
	detail, err := lc.Engine.GetCourseWithModules(c.Params("id"))
	if err != nil {
		return lc.respond(c, err)
	}
	return c.JSON(detail)
}

func (lc *LearnController) SaveCourse(c *fiber.Ctx) error {
	var input learn.SaveCourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	courseID, err := lc.Engine.SaveCourse(input)
	if err != nil {
		return lc.respond(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"courseId": courseID,
	})
}

func (lc *LearnController) UpdateModuleProgress(c *fiber.Ctx) error {
	var input struct {
		Progress models.ModuleProgress `json:"progress"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := lc.Engine.UpdateModuleProgress(c.Params("id"), c.Params("moduleId"), input.Progress); err != nil {
		return lc.respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (lc *LearnController) UpdateCourseStatus(c *fiber.Ctx) error {
	var input struct {
		Status models.CourseStatus `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := lc.Engine.UpdateCourseStatus(c.Params("id"), input.Status); err != nil {
		return lc.respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (lc *LearnController) DeleteCourse(c *fiber.Ctx) error {
	if err := lc.Engine.DeleteCourse(c.Params("id")); err != nil {
		return lc.respond(c, err)
	}
	return utils.NoContent(c)
}

func (lc *LearnController) UpdateCourseGoal(c *fiber.Ctx) error {
	var input struct {
		Goal string `json:"goal"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := lc.Engine.UpdateCourseGoal(c.Params("id"), input.Goal); err != nil {
		return lc.respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (lc *LearnController) GetGoals(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"goals": lc.Engine.GetGoalsWithStats()})
}

func (lc *LearnController) CreateGoal(c *fiber.Ctx) error {
	var input struct {
		Label       string `json:"label"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	goal, err := lc.Engine.CreateGoal(input.Label, input.Description)
	if err != nil {
		return lc.respond(c, err)
	}
	return utils.Created(c, goal)
}

func (lc *LearnController) RenameGoal(c *fiber.Ctx) error {
	var input struct {
		Label string `json:"label"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := lc.Engine.RenameGoal(c.Params("label"), input.Label); err != nil {
		return lc.respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (lc *LearnController) DeleteGoal(c *fiber.Ctx) error {
	if err := lc.Engine.DeleteGoal(c.Params("label")); err != nil {
		return lc.respond(c, err)
	}
	return utils.NoContent(c)
}

func (lc *LearnController) GetGenerationStatus(c *fiber.Ctx) error {
	courseID := c.Params("courseId")
	return c.JSON(fiber.Map{
		"generating": lc.Engine.IsGenerating(courseID),
		"error":      lc.Engine.GetGenerationError(courseID),
	})
}

func (lc *LearnController) GetPendingCount(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"count":             lc.Engine.GetPendingCoursesCount(),
		"shouldAutoRegroup": lc.Engine.ShouldTriggerAutoRegroup(),
	})
}

func (lc *LearnController) Regroup(c *fiber.Ctx) error {
	if err := lc.Engine.AutoRegroup(c.Context()); err != nil {
		return lc.respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
