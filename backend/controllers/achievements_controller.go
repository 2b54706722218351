package controllers

import (
	"time"

	"learnspace/backend/hub"
	"learnspace/backend/models"
	"learnspace/backend/repositories"
	"learnspace/backend/services"
	"learnspace/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AchievementsController struct {
	Achievements  *repositories.AchievementRepository
	Notifications *services.NotificationService
	Hub           *hub.Hub
}

func NewAchievementsController(
	achievements *repositories.AchievementRepository,
	notifications *services.NotificationService,
	h *hub.Hub,
) *AchievementsController {
	return &AchievementsController{Achievements: achievements, Notifications: notifications, Hub: h}
}

func (ac *AchievementsController) ListAll(c *fiber.Ctx) error {
	achievements, err := ac.Achievements.GetAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return utils.Success(c, fiber.StatusOK, achievements)
}

func (ac *AchievementsController) ListMine(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	search := c.Query("search")
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	if search == "" && page == 1 && pageSize == 20 {
		achievements, err := ac.Achievements.GetUserAchievements(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
		return utils.Success(c, fiber.StatusOK, achievements)
	}

	achievements, err := ac.Achievements.GetUserAchievementsPaged(userID, search, page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return utils.Success(c, fiber.StatusOK, achievements)
}

type AwardInput struct {
	UserID        string `json:"user_id" validate:"required"`
	AchievementID string `json:"achievement_id" validate:"required"`
}

// Award grants an achievement to a user and notifies them. Granting
// the same achievement twice is rejected.
func (ac *AchievementsController) Award(c *fiber.Ctx) error {
	adminID, _ := c.Locals("userID").(string)

	var input AwardInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	achievement, err := ac.Achievements.GetByID(input.AchievementID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if achievement == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Achievement not found",
		})
	}

	has, err := ac.Achievements.HasUserAchievement(input.UserID, input.AchievementID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if has {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Achievement already awarded",
		})
	}

	userAchievement := models.UserAchievement{
		UserID:        input.UserID,
		AchievementID: input.AchievementID,
		ReceivedAt:    time.Now(),
	}
	if err := ac.Achievements.AddUserAchievement(&userAchievement); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not award achievement",
		})
	}

	created, err := ac.Notifications.Create(services.NotificationInput{
		Title:      "Achievement unlocked: " + achievement.Name,
		Content:    achievement.Description,
		Type:       "achievement",
		TargetType: models.NotificationTargetUser,
		TargetID:   input.UserID,
		CreatedBy:  adminID,
	})
	if err == nil && len(created) > 0 {
		ac.Hub.SendToUser(input.UserID, "ReceiveNotification", created[0])
	}

	return utils.Success(c, fiber.StatusCreated, userAchievement)
}
