package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	"storecart/internal/domain"
	applog "storecart/internal/log"
	"storecart/internal/repos"
	"storecart/internal/validate"
)

type OrderHandler struct {
	Orders *repos.OrderRepo
}

// GET /api/v1/orders/:id. Only the buyer and admins may see an order; anyone
// else gets the same 404 as a missing id.
func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	o, err := h.Orders.Get(c.UserContext(), oid)
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	if err != nil {
		applog.Error(c, "orders.get.fail", err, map[string]any{"order_id": oid})
		return fail(c, err)
	}
	u := currentUser(c)
	if u == nil || (u.ID != o.UserID && u.Role != "ADMIN") {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	return c.JSON(o)
}

// History lists orders for the current logged-in user.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u := currentUser(c)
	orders, err := h.Orders.ListByUser(c.UserContext(), u.ID)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return fail(c, err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return c.JSON(fiber.Map{"orders": orders})
}
