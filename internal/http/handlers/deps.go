package handlers

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"storecart/internal/cartstore"
	"storecart/internal/config"
	"storecart/internal/repos"
	"storecart/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	OrderHandler    *OrderHandler
	ProductHandler  *ProductHandler
	AuthHandler     *AuthHandler
	AdminHandler    *AdminHandler
}

// NewDeps wires repositories, the cart source for cfg.CartBackend and the
// checkout flow. rdb is only used by the redis backend; notifier may be nil.
func NewDeps(db *sqlx.DB, cfg config.Config, rdb *redis.Client, notifier services.Notifier) *Deps {
	userRepo := repos.NewUserRepo(db)
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	auth := &services.AuthService{Users: userRepo, Secret: []byte(cfg.JWTSecret)}
	flow := services.NewCheckoutService(orderRepo, userRepo, notifier)
	carts := &CartSource{
		Backend:      cfg.CartBackend,
		Registry:     services.NewCartRegistry(StoreFactory(cfg.CartBackend, cartRepo, rdb, cfg.CartTTL)),
		CookieSecure: cfg.CookieSecure,
	}

	return &Deps{
		Auth:            auth,
		CartHandler:     &CartHandler{Carts: carts, Products: prodRepo},
		CheckoutHandler: &CheckoutHandler{Carts: carts, Flow: flow},
		OrderHandler:    &OrderHandler{Orders: orderRepo},
		ProductHandler:  &ProductHandler{Products: prodRepo},
		AuthHandler:     &AuthHandler{Auth: auth, Carts: carts, Secure: cfg.CookieSecure},
		AdminHandler:    &AdminHandler{Orders: orderRepo},
	}
}

// StoreFactory maps an owner to its backing store. On the sqlite backend
// guests keep an in-memory cart until they sign in.
func StoreFactory(backend string, cartRepo *repos.CartRepo, rdb *redis.Client, ttl time.Duration) services.StoreFactory {
	return func(o services.Owner) services.CartStore {
		switch backend {
		case config.BackendSQLite:
			if o.User != nil {
				return cartRepo.For(o.User.ID)
			}
			return cartstore.NewMemory()
		case config.BackendRedis:
			return cartstore.NewRedis(rdb, o.Key(), ttl)
		default:
			return cartstore.NewMemory()
		}
	}
}
