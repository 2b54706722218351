package controllers

import (
	"errors"

	"learnspace/backend/services"
	"learnspace/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type EnrollmentsController struct {
	Enrollments  *services.EnrollmentService
	Certificates *services.CertificateService
}

func NewEnrollmentsController(enrollments *services.EnrollmentService, certificates *services.CertificateService) *EnrollmentsController {
	return &EnrollmentsController{Enrollments: enrollments, Certificates: certificates}
}

func (ec *EnrollmentsController) Enroll(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	enrollment, err := ec.Enrollments.Enroll(userID, c.Params("id"))
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	case errors.Is(err, services.ErrAlreadyEnrolled):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Already enrolled in this course",
		})
	case errors.Is(err, services.ErrPaymentRequired):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"error": "Course requires payment",
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not enroll",
		})
	}
	return utils.Success(c, fiber.StatusCreated, enrollment)
}

func (ec *EnrollmentsController) ListMine(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	enrollments, err := ec.Enrollments.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return utils.Success(c, fiber.StatusOK, enrollments)
}

type ProgressInput struct {
	LessonsCompleted int `json:"lessons_completed"`
}

// UpdateProgress recomputes the percentage and, once the course flips
// to completed, issues the certificate as part of the same request.
func (ec *EnrollmentsController) UpdateProgress(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	courseID := c.Params("id")

	var input ProgressInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.LessonsCompleted < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "lessons_completed must not be negative",
		})
	}

	enrollment, err := ec.Enrollments.UpdateProgress(userID, courseID, input.LessonsCompleted)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Enrollment not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update progress",
		})
	}

	response := fiber.Map{"enrollment": enrollment}
	if enrollment.Status == "completed" {
		if certificate, err := ec.Certificates.Issue(userID, courseID); err == nil {
			response["certificate"] = certificate
		}
	}
	return utils.Success(c, fiber.StatusOK, response)
}
