package controllers

import (
	"learnspace/backend/hub"
	"learnspace/backend/models"
	"learnspace/backend/services"
	"learnspace/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type NotificationsController struct {
	Notifications *services.NotificationService
	Hub           *hub.Hub
}

func NewNotificationsController(notifications *services.NotificationService, h *hub.Hub) *NotificationsController {
	return &NotificationsController{Notifications: notifications, Hub: h}
}

func (nc *NotificationsController) ListMine(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, err := nc.Notifications.ListByUser(userID, page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return utils.Success(c, fiber.StatusOK, notifications)
}

func (nc *NotificationsController) UnreadCount(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	count, err := nc.Notifications.UnreadCount(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"unread_count": count})
}

type NotificationInput struct {
	Title      string `json:"title" validate:"required"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	TargetType string `json:"target_type" validate:"required,oneof=user course role broadcast"`
	TargetID   string `json:"target_id"`
}

// Create persists the fan-out rows first and pushes to the hub only
// after the write landed. A connected recipient gets the event
// immediately; everyone else catches up via the REST list.
func (nc *NotificationsController) Create(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	var input NotificationInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	created, err := nc.Notifications.Create(services.NotificationInput{
		Title:      input.Title,
		Content:    input.Content,
		Type:       input.Type,
		TargetType: input.TargetType,
		TargetID:   input.TargetID,
		CreatedBy:  userID,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create notification",
		})
	}

	nc.push(input, created)

	return utils.Success(c, fiber.StatusCreated, fiber.Map{
		"recipients": len(created),
	})
}

// push fans the stored notification out over the hub. Group-addressed
// targets use their named group; user and broadcast targets go to each
// recipient's personal group.
func (nc *NotificationsController) push(input NotificationInput, created []models.Notification) {
	if len(created) == 0 {
		return
	}

	switch input.TargetType {
	case models.NotificationTargetCourse:
		nc.Hub.Broadcast(hub.CourseGroup(input.TargetID), "ReceiveNotification", created[0])
	case models.NotificationTargetRole:
		nc.Hub.Broadcast(hub.RoleGroup(input.TargetID), "ReceiveNotification", created[0])
	default:
		for i := range created {
			nc.Hub.SendToUser(created[i].UserID, "ReceiveNotification", created[i])
		}
	}
}

func (nc *NotificationsController) MarkRead(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	changed, err := nc.Notifications.MarkRead(c.Params("id"), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update notification",
		})
	}
	if !changed {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Notification not found or already read",
		})
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"read": true})
}

func (nc *NotificationsController) MarkAllRead(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	if err := nc.Notifications.MarkAllRead(userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update notifications",
		})
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"read": true})
}
