package controllers

import (
	"learnspace/backend/repositories"
	"learnspace/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AdminController struct {
	Users       *repositories.UserRepository
	Courses     *repositories.CourseRepository
	Enrollments *repositories.EnrollmentRepository
	Payments    *repositories.PaymentRepository
}

func NewAdminController(
	users *repositories.UserRepository,
	courses *repositories.CourseRepository,
	enrollments *repositories.EnrollmentRepository,
	payments *repositories.PaymentRepository,
) *AdminController {
	return &AdminController{Users: users, Courses: courses, Enrollments: enrollments, Payments: payments}
}

// Dashboard aggregates platform-wide counters for the admin overview.
func (ac *AdminController) Dashboard(c *fiber.Ctx) error {
	users, err := ac.Users.CountAll()
	if err != nil {
		return ac.queryError(c)
	}
	courses, err := ac.Courses.CountAll()
	if err != nil {
		return ac.queryError(c)
	}
	enrollments, err := ac.Enrollments.CountAll()
	if err != nil {
		return ac.queryError(c)
	}
	revenue, err := ac.Payments.TotalPaid()
	if err != nil {
		return ac.queryError(c)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"total_users":       users,
		"total_courses":     courses,
		"total_enrollments": enrollments,
		"total_revenue":     revenue,
	})
}

func (ac *AdminController) BanUser(c *fiber.Ctx) error {
	return ac.setBanned(c, true)
}

func (ac *AdminController) UnbanUser(c *fiber.Ctx) error {
	return ac.setBanned(c, false)
}

func (ac *AdminController) setBanned(c *fiber.Ctx, banned bool) error {
	account, err := ac.Users.GetByID(c.Params("id"))
	if err != nil {
		return ac.queryError(c)
	}
	if account == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	if account.Role == "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Cannot ban an admin",
		})
	}

	account.IsBanned = banned
	if err := ac.Users.Update(account); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update user",
		})
	}
	return utils.Success(c, fiber.StatusOK, account)
}

func (ac *AdminController) queryError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Could not query database",
	})
}
