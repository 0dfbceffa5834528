package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "storecart/internal/log"
	"storecart/internal/services"
)

type CheckoutHandler struct {
	Carts *CartSource
	Flow  *services.CheckoutService
}

// POST /api/v1/checkout, optionally ?seller= to order one seller's lines.
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	cart, err := h.Carts.Cart(c)
	if err != nil {
		return fail(c, err)
	}
	res, err := cart.CheckoutSeller(c.UserContext(), h.Flow, sellerOf(c))
	switch {
	case err == nil:
		applog.Audit(c, "order.place", map[string]any{
			"order_id": res.OrderID,
			"total":    res.Total.StringFixed(2),
			"notified": res.NotifyError == "",
		})
		return c.Status(fiber.StatusCreated).JSON(res)
	case errors.Is(err, services.ErrCartNotCleared):
		// The order exists; the client must not retry the checkout.
		applog.Security(c, "order.place.reconcile", map[string]any{"order_id": res.OrderID})
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"error": "order placed but cart could not be cleared", "result": res})
	default:
		applog.Security(c, "order.place.fail", map[string]any{"step": res.Trace, "error": err.Error()})
		code := status(err)
		msg := err.Error()
		if code >= fiber.StatusInternalServerError {
			msg = "could not place order, please try again"
		}
		return c.Status(code).JSON(fiber.Map{"error": msg, "result": res})
	}
}
