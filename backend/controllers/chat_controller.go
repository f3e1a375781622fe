package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"learnloom/backend/chat"
	"learnloom/backend/utils"
)

// ChatController serves the read-only conversation history the learn
// engine uses as generation context.
type ChatController struct {
	Chats *chat.Store
}

func NewChatController(chats *chat.Store) *ChatController {
	return &ChatController{Chats: chats}
}

func (cc *ChatController) GetConversations(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	convs, err := cc.Chats.Recent(c.Context(), limit)
	if err != nil {
		return utils.InternalServerError(c, err.Error())
	}
	return c.JSON(fiber.Map{"conversations": convs})
}

func (cc *ChatController) GetConversation(c *fiber.Ctx) error {
	conv, err := cc.Chats.Conversation(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Conversation not found")
		}
		return utils.InternalServerError(c, err.Error())
	}
	return c.JSON(conv)
}
