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

type AdminHandler struct {
	Orders *repos.OrderRepo
}

// GET /api/v1/admin/reconciliation
func (h *AdminHandler) Pending(c *fiber.Ctx) error {
	ords, err := h.Orders.ListByStatus(c.UserContext(), domain.OrderStatusNeedsReconciliation)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return fail(c, err)
	}
	if ords == nil {
		ords = []domain.Order{}
	}
	return c.JSON(fiber.Map{"orders": ords})
}

// POST /api/v1/admin/reconciliation/:id
func (h *AdminHandler) Resolve(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	if err := h.Orders.Resolve(c.UserContext(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no such order awaiting reconciliation"})
		}
		applog.Error(c, "admin.orders.resolve.fail", err, map[string]any{"order_id": id})
		return fail(c, err)
	}
	applog.Audit(c, "admin.orders.resolve", map[string]any{"order_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
