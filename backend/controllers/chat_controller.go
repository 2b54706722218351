package controllers

import (
	"errors"

	"learnspace/backend/services"
	"learnspace/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// ChatController is the REST side of messaging: conversation listing
// and history. Live delivery happens over the websocket hub.
type ChatController struct {
	Chat *services.ChatService
}

func NewChatController(chat *services.ChatService) *ChatController {
	return &ChatController{Chat: chat}
}

type StartConversationInput struct {
	UserID string `json:"user_id" validate:"required"`
}

func (cc *ChatController) StartConversation(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	var input StartConversationInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}
	if input.UserID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot start a conversation with yourself",
		})
	}

	conversation, err := cc.Chat.EnsureConversation(userID, input.UserID)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create conversation",
		})
	}
	return utils.Success(c, fiber.StatusOK, conversation)
}

func (cc *ChatController) ListConversations(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	conversations, err := cc.Chat.ListConversations(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return utils.Success(c, fiber.StatusOK, conversations)
}

func (cc *ChatController) History(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 50)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	messages, err := cc.Chat.History(c.Params("id"), userID, page, pageSize)
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Conversation not found",
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not a participant of this conversation",
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return utils.Success(c, fiber.StatusOK, messages)
}
