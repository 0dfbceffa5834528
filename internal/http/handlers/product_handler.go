package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storecart/internal/domain"
	"storecart/internal/log"
	"storecart/internal/repos"
	"storecart/internal/validate"
)

type ProductHandler struct {
	Products *repos.ProductRepo
}

type productView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	Thumbnail string `json:"thumbnail"`
	SellerID  string `json:"seller_id"`
}

// GET /api/v1/products?seller=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	seller, ok := validate.Seller(c.Query("seller"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "seller"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid seller"})
	}
	ps, err := h.Products.ListBySeller(c.UserContext(), seller)
	if err != nil {
		log.Error(c, "products.list.fail", err, nil)
		return fail(c, err)
	}
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, view(p))
	}
	return c.JSON(fiber.Map{"products": out})
}

func view(p domain.Product) productView {
	return productView{
		ID:        p.ID,
		Title:     p.Title,
		Price:     p.NetPrice().StringFixed(2),
		Thumbnail: p.Thumbnail,
		SellerID:  p.SellerID,
	}
}
