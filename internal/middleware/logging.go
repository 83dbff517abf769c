package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/groupforms/backend/pkg/logger"
)

func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := logger.GenerateRequestID()
		c.Locals("requestID", requestID)

		err := c.Next()

		logger.Info("http_request", map[string]interface{}{
			"method":      c.Method(),
			"path":        c.Path(),
			"status_code": c.Response().StatusCode(),
			"latency_ms":  time.Since(start).Milliseconds(),
			"ip":          c.IP(),
			"request_id":  requestID,
		})

		return err
	}
}

// SecurityLogger surfaces denied and missing-resource responses in the
// log stream regardless of which handler produced them.
func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		statusCode := c.Response().StatusCode()
		if statusCode != fiber.StatusForbidden && statusCode != fiber.StatusNotFound {
			return err
		}

		details := map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
			"ip":     c.IP(),
		}
		if statusCode == fiber.StatusForbidden {
			details["reason"] = "access_denied"
			logger.Warn("access_denied", details)
		} else {
			details["reason"] = "not_found"
			logger.Warn("resource_not_found", details)
		}

		return err
	}
}

// RequestID returns the id assigned by RequestLogger, empty when the
// middleware is not installed.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestID").(string); ok {
		return id
	}
	return ""
}
