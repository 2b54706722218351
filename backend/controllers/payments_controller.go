package controllers

import (
	"errors"

	"learnspace/backend/services"
	"learnspace/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type PaymentsController struct {
	Payments *services.PaymentService
}

func NewPaymentsController(payments *services.PaymentService) *PaymentsController {
	return &PaymentsController{Payments: payments}
}

// Checkout opens a pending gateway transaction for a paid course.
func (pc *PaymentsController) Checkout(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	transaction, err := pc.Payments.Checkout(userID, c.Params("id"))
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	case errors.Is(err, services.ErrFreeCourse):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Course is free, enroll directly",
		})
	case errors.Is(err, services.ErrAlreadyEnrolled):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Already enrolled in this course",
		})
	case err != nil:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Payment gateway error",
		})
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{
		"order_id":   transaction.OrderID,
		"amount":     transaction.Amount,
		"snap_token": transaction.SnapToken,
	})
}

type gatewayNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
}

// Notify receives the gateway's server-to-server status callback.
// Settlement enrolls the buyer; repeats of the same callback are
// idempotent.
func (pc *PaymentsController) Notify(c *fiber.Ctx) error {
	var notification gatewayNotification
	if err := c.BodyParser(&notification); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	transaction, err := pc.Payments.Confirm(notification.OrderID, notification.TransactionStatus)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown order",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not process notification",
		})
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"order_id": transaction.OrderID,
		"status":   transaction.Status,
	})
}

func (pc *PaymentsController) ListMine(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	transactions, err := pc.Payments.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return utils.Success(c, fiber.StatusOK, transactions)
}
