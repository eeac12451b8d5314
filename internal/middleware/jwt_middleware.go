package middleware

import (
	"log"
	"strings"

	"phsar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CustomerIDKey is the fiber Locals key holding the authenticated customer id.
const CustomerIDKey = "customer_id"

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		customerID, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(CustomerIDKey, customerID)
		return c.Next()
	}
}

// CustomerID returns the principal stored by AuthRequired.
func CustomerID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(CustomerIDKey).(uint)
	return id, ok && id > 0
}
