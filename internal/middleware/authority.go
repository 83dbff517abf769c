package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/groupforms/backend/pkg/logger"
	"github.com/groupforms/backend/pkg/utils"
)

const adminCookie = "admin"

// RequireAuthority guards mutating operations behind the trust flag
// established upstream. The admin cookie carries "True" or "False";
// reads pass regardless of its value.
func RequireAuthority(c *fiber.Ctx) error {
	if c.Cookies(adminCookie) == "False" && c.Method() != fiber.MethodGet {
		logger.Warn("authority_denied", map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
			"ip":     c.IP(),
		})
		return utils.Error(c, fiber.StatusForbidden, "Forbidden.")
	}
	return c.Next()
}
