package cartstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"storecart/internal/domain"
)

const (
	CookieName   = "cart"
	CookieMaxAge = 7 * 24 * time.Hour
	// Browsers drop cookies larger than this.
	maxCookieBytes = 4096
)

var ErrCookieTooLarge = errors.New("cart does not fit in a cookie")

// CookieJar is the part of *fiber.Ctx the cookie store needs.
type CookieJar interface {
	Cookies(key string, defaultValue ...string) string
	Cookie(cookie *fiber.Cookie)
}

// Cookie stores the cart in the request's "cart" cookie as a URL-escaped JSON
// array that expires after seven days.
type Cookie struct {
	jar    CookieJar
	secure bool
	now    func() time.Time
}

func NewCookie(jar CookieJar, secure bool) *Cookie {
	return &Cookie{jar: jar, secure: secure, now: time.Now}
}

func (s *Cookie) Load(context.Context) ([]domain.LineItem, error) {
	raw := s.jar.Cookies(CookieName)
	if raw == "" {
		return nil, nil
	}
	b, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptCart, err)
	}
	return Decode([]byte(b))
}

func (s *Cookie) Save(_ context.Context, items []domain.LineItem) error {
	b, err := Encode(items)
	if err != nil {
		return err
	}
	val := url.QueryEscape(string(b))
	if len(val) > maxCookieBytes {
		return ErrCookieTooLarge
	}
	s.jar.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    val,
		Path:     "/",
		Expires:  s.now().Add(CookieMaxAge),
		MaxAge:   int(CookieMaxAge / time.Second),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   s.secure,
	})
	return nil
}
