package controllers

import (
	"errors"

	"learnspace/backend/services"
	"learnspace/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CertificatesController struct {
	Certificates *services.CertificateService
}

func NewCertificatesController(certificates *services.CertificateService) *CertificatesController {
	return &CertificatesController{Certificates: certificates}
}

func (cc *CertificatesController) ListMine(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	certificates, err := cc.Certificates.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return utils.Success(c, fiber.StatusOK, certificates)
}

func (cc *CertificatesController) Issue(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	certificate, err := cc.Certificates.Issue(userID, c.Params("id"))
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Enrollment not found",
		})
	case errors.Is(err, services.ErrCourseNotCompleted):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Course is not completed",
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not issue certificate",
		})
	}
	return utils.Success(c, fiber.StatusCreated, certificate)
}

// Verify is public: anyone holding a certificate code can check it.
func (cc *CertificatesController) Verify(c *fiber.Ctx) error {
	certificate, err := cc.Certificates.Verify(c.Params("code"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if certificate == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Certificate not found",
		})
	}
	return utils.Success(c, fiber.StatusOK, certificate)
}
