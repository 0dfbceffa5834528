package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storecart/internal/cartstore"
	"storecart/internal/config"
	"storecart/internal/domain"
	"storecart/internal/services"
	"storecart/internal/validate"
)

// CartSource finds the cart a request operates on. Cookie carts live in the
// request itself, so they are rebuilt per request and their drawer flag does
// not outlive it; every other backend is served from the registry. The
// ?seller= scope is a filter over that one cart, see sellerOf.
type CartSource struct {
	Backend      string
	Registry     *services.CartRegistry
	CookieSecure bool
}

// Cart is for requests that only read or shrink the cart; a guest's cart is
// not registered by it.
func (s *CartSource) Cart(c *fiber.Ctx) (*services.Cart, error) {
	owner := ownerOf(c, s.CookieSecure)
	if s.Backend == config.BackendCookie {
		return s.cookieCart(c, owner), nil
	}
	return s.Registry.Peek(c.UserContext(), owner)
}

// Open is for requests that add to the cart or change its drawer flag.
func (s *CartSource) Open(c *fiber.Ctx) (*services.Cart, error) {
	owner := ownerOf(c, s.CookieSecure)
	if s.Backend == config.BackendCookie {
		return s.cookieCart(c, owner), nil
	}
	return s.Registry.Get(c.UserContext(), owner)
}

func (s *CartSource) cookieCart(c *fiber.Ctx, owner services.Owner) *services.Cart {
	cart := services.NewCart(cartstore.NewCookie(c, s.CookieSecure), owner.User)
	// Load failures are logged and leave an empty cart.
	_ = cart.Load(c.UserContext())
	return cart
}

// Adopt folds the guest cart of this session into the user's cart.
func (s *CartSource) Adopt(c *fiber.Ctx, sid string, u *domain.User) error {
	if s.Backend == config.BackendCookie {
		return nil
	}
	return s.Registry.Adopt(c.UserContext(), services.Owner{SessionID: sid}, services.Owner{User: u})
}

func ownerOf(c *fiber.Ctx, secure bool) services.Owner {
	return services.Owner{
		SessionID: ensureSID(c, secure),
		User:      currentUser(c),
		SellerID:  sellerOf(c),
	}
}

// sellerOf is the request's seller scope. An invalid value means no scope.
func sellerOf(c *fiber.Ctx) string {
	seller, ok := validate.Seller(c.Query("seller"))
	if !ok {
		return ""
	}
	return seller
}
