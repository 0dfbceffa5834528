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

type CartHandler struct {
	Carts    *CartSource
	Products *repos.ProductRepo
}

type addForm struct {
	ProductID string `json:"product_id" form:"productId"`
	Quantity  int    `json:"quantity" form:"qty"`
}

// GET /api/v1/cart
func (h *CartHandler) Get(c *fiber.Ctx) error {
	cart, err := h.Carts.Cart(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(cart.ViewOf(sellerOf(c)))
}

// GET /cart
func (h *CartHandler) Page(c *fiber.Ctx) error {
	cart, err := h.Carts.Cart(c)
	if err != nil {
		applog.Error(c, "cart.page.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not load your cart")
	}
	v := cart.ViewOf(sellerOf(c))
	return render(c, "cart", fiber.Map{"Cart": v, "AvatarIsURL": isURL(v.Avatar)})
}

// POST /api/v1/cart/items. Title and price come from the catalogue, never
// from the request.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in addForm
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	id, ok := validate.ID(in.ProductID)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product_id"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	qty, ok := validate.Qty(in.Quantity)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "quantity", "value": in.Quantity})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "quantity must be at least 1"})
	}

	p, err := h.Products.Get(c.UserContext(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	if err != nil {
		applog.Error(c, "cart.product.lookup.fail", err, map[string]any{"product": id})
		return fail(c, err)
	}
	seller := sellerOf(c)
	if seller != "" && p.SellerID != seller {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product is not sold by this seller"})
	}

	cart, err := h.Carts.Open(c)
	if err != nil {
		return fail(c, err)
	}
	item := domain.LineItem{
		ProductID: p.ID,
		Title:     p.Title,
		UnitPrice: p.NetPrice(),
		Thumbnail: p.Thumbnail,
		Quantity:  qty,
		SellerID:  p.SellerID,
	}
	if err := cart.AddItem(c.UserContext(), item); err != nil {
		return fail(c, err)
	}
	applog.Info(c, "cart.add", map[string]any{"product": p.ID, "qty": qty})
	return c.JSON(cart.ViewOf(seller))
}

// DELETE /api/v1/cart/items/:id
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	key, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item id"})
	}
	cart, err := h.Carts.Cart(c)
	if err != nil {
		return fail(c, err)
	}
	if err := cart.RemoveItem(c.UserContext(), key); err != nil {
		return fail(c, err)
	}
	applog.Info(c, "cart.remove", map[string]any{"key": key})
	return c.JSON(cart.ViewOf(sellerOf(c)))
}

// DELETE /api/v1/cart
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	cart, err := h.Carts.Cart(c)
	if err != nil {
		return fail(c, err)
	}
	seller := sellerOf(c)
	if err := cart.ClearSeller(c.UserContext(), seller); err != nil {
		return fail(c, err)
	}
	applog.Info(c, "cart.clear", map[string]any{"seller": seller})
	return c.JSON(cart.ViewOf(seller))
}

// POST /api/v1/cart/toggle
func (h *CartHandler) Toggle(c *fiber.Ctx) error {
	cart, err := h.Carts.Open(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"visible": cart.ToggleVisibility()})
}

// POST /api/v1/cart/reload
func (h *CartHandler) Reload(c *fiber.Ctx) error {
	cart, err := h.Carts.Cart(c)
	if err != nil {
		return fail(c, err)
	}
	if err := cart.Load(c.UserContext()); err != nil {
		return fail(c, err)
	}
	return c.JSON(cart.ViewOf(sellerOf(c)))
}
