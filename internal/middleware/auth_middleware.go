package middleware

import (
	"errors"

	"sbf/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TokenCookie is the fallback transport for the auth token. The
// Authorization header ("Token <value>") takes precedence when present.
const TokenCookie = "auth_token"

// AuthRequired is a Fiber middleware that resolves the request's token into
// a user. Any miss is a plain 401; the response never says why.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, token, err := authService.Authenticate(c.Get("Authorization"), c.Cookies(TokenCookie))
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Authentication credentials were not provided or are invalid",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not authenticate request",
			})
		}

		c.Locals("user", user)
		c.Locals("token", token)
		return c.Next()
	}
}
