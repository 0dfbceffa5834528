package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storecart/internal/cartstore"
	"storecart/internal/domain"
	"storecart/internal/services"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := currentUser(c); u != nil {
		data["User"] = u
	}
	return c.Render(tmpl, data)
}

// status maps domain errors to HTTP codes.
func status(err error) int {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidQuantity), errors.Is(err, services.ErrMissingProduct):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrEmptyCart):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, cartstore.ErrCookieTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrCorruptCart):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrOrderWrite):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	code := status(err)
	msg := "something went wrong, please try again"
	if code < fiber.StatusInternalServerError {
		msg = err.Error()
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
