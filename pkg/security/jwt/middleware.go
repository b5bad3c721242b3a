package jwt

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/habits/pkg/auth"
)

// Locals keys set by the middleware.
const (
	LocalUserID = "userId"
	LocalEmail  = "email"
)

// NewAuthMiddleware returns a Fiber middleware that validates a Bearer JWT (HS256).
// On success sets user id and email into c.Locals.
func NewAuthMiddleware(tokens *Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme, tokenStr, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		tokenStr = strings.TrimSpace(tokenStr)
		if !ok || !strings.EqualFold(scheme, "Bearer") || tokenStr == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Missing or invalid token"})
		}
		id, err := tokens.Parse(c.UserContext(), tokenStr)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Token expired"})
			}
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}
		c.Locals(LocalUserID, id.UserID)
		c.Locals(LocalEmail, id.Email)
		return c.Next()
	}
}
