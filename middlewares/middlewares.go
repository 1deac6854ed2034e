package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"github.com/m-ce-m1/html-bot/util"
)

func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":  "error",
		"message": "Not Found",
	})
}

// Protected accepts the admin JWT from the Authorization header or the
// token cookie and requires the admin role.
func Protected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(fiber.HeaderAuthorization)
		if token == "" {
			token = c.Cookies("token")
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "No token provided",
			})
		}

		claims, err := util.VerifyJwtToken(token, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid token",
				"error":   err.Error(),
			})
		}
		role, _ := claims["role"].(string)
		if role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status":  "error",
				"message": "Admin role required",
			})
		}

		c.Locals("claims", claims)
		return c.Next()
	}
}
