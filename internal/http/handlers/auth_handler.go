package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"storecart/internal/log"
	"storecart/internal/services"
	"storecart/internal/validate"
)

type AuthHandler struct {
	Auth   *services.AuthService
	Carts  *CartSource
	Secure bool
}

func ensureSID(c *fiber.Ctx, secure bool) string {
	sid := c.Cookies("sid")
	if sid == "" {
		if v, ok := c.Locals("sid").(string); ok {
			return v
		}
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   secure,
		})
		c.Locals("sid", sid)
	}
	return sid
}

type loginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login binds the session to the user, folds the guest cart into theirs and,
// when a signing secret is configured, returns a bearer token as well.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c, h.Secure)
	var in loginForm
	if err := c.BodyParser(&in); err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"reason": "bad_body"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}
	if !validate.Password(in.Password) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}

	u, err := h.Auth.Login(sid, email, in.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}
	setUser(c, u)

	if err := h.Carts.Adopt(c, sid, u); err != nil {
		log.Error(c, "cart.adopt.fail", err, nil)
	}

	out := fiber.Map{"user": u, "avatar": u.Avatar()}
	if tok, err := h.Auth.IssueToken(u); err == nil {
		out["token"] = tok
	}
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(out)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c, h.Secure)
	_ = h.Auth.Logout(sid)
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.Secure,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.SendStatus(fiber.StatusNoContent)
}
