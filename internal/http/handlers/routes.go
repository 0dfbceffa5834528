package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "storecart/internal/log"
)

// Register mounts the session middleware and every route on app.
func Register(app *fiber.App, d *Deps) {
	app.Use(Attach(d.Auth))

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/cart", d.CartHandler.Page)

	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, please try again later"})
		},
	}), d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)

	api := app.Group("/api/v1")
	api.Get("/products", d.ProductHandler.List)

	api.Get("/cart", d.CartHandler.Get)
	api.Post("/cart/items", d.CartHandler.Add)
	api.Delete("/cart/items/:id", d.CartHandler.Remove)
	api.Delete("/cart", d.CartHandler.Clear)
	api.Post("/cart/toggle", d.CartHandler.Toggle)
	api.Post("/cart/reload", d.CartHandler.Reload)

	api.Post("/checkout", RequireUser(), d.CheckoutHandler.Place)
	api.Get("/orders", RequireUser(), d.OrderHandler.History)
	api.Get("/orders/:id", RequireUser(), d.OrderHandler.View)

	admin := api.Group("/admin", RequireUser(), RequireAdmin())
	admin.Get("/reconciliation", d.AdminHandler.Pending)
	admin.Post("/reconciliation/:id", d.AdminHandler.Resolve)
}
