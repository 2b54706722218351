package middleware

import (
	"learnspace/backend/config"
	"learnspace/backend/repositories"
	"learnspace/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates the bearer token and stores the user id in
// Locals for downstream handlers.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		c.Locals("userID", userID)
		return c.Next()
	}
}

// RoleMiddleware loads the account and requires one of the given
// roles. Banned accounts are rejected regardless of role.
func RoleMiddleware(users *repositories.UserRepository, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("userID").(string)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		account, err := users.GetByID(userID)
		if err != nil || account == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		if account.IsBanned {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Account is banned",
			})
		}

		for _, role := range roles {
			if account.Role == role {
				c.Locals("role", account.Role)
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden - insufficient role",
		})
	}
}
