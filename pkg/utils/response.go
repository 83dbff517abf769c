package utils

import "github.com/gofiber/fiber/v2"

// Error writes the service's uniform error body.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// ValidationErrors writes field-level validation messages verbatim as
// the response body.
func ValidationErrors(c *fiber.Ctx, errs map[string][]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errs)
}
