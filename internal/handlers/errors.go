package handlers

import (
	"errors"

	"exercisetracker/internal/services"

	"github.com/gofiber/fiber/v2"
)

const msgInvalidBody = "Invalid request body"

// respondError maps service error kinds onto status codes.
func respondError(c *fiber.Ctx, err error) error {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		storeErr      *services.StoreError
	)
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Message})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFoundErr.Message})
	case errors.As(err, &storeErr):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": storeErr.Message})
	default:
		return err
	}
}
