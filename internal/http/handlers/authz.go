package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storecart/internal/domain"
	applog "storecart/internal/log"
	"storecart/internal/services"
)

// Attach puts the signed-in user into Locals. A bearer token wins over the
// sid cookie; a rejected token leaves the request anonymous.
func Attach(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
			u, err := auth.TokenUser(strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
			if err != nil {
				applog.Security(c, "auth.token.reject", map[string]any{"reason": err.Error()})
				return c.Next()
			}
			setUser(c, u)
			return c.Next()
		}
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(sid); err == nil && u != nil {
				setUser(c, u)
			}
		}
		return c.Next()
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			applog.Security(c, "access.denied.anonymous", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "sign in required"})
		}
		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil || u.Role != "ADMIN" {
			applog.Security(c, "access.denied.admin", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access denied"})
		}
		return c.Next()
	}
}

func setUser(c *fiber.Ctx, u *domain.User) {
	c.Locals("user", u)
	c.Locals(applog.UserIDKey, u.ID)
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
