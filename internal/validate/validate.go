package validate

import (
	"regexp"
	"strings"
)

// MaxQty caps a single add-to-cart request.
const MaxQty = 50

var (
	reEmail  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reSeller = regexp.MustCompile(`^[A-Za-z0-9_-]{0,64}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Qty rejects non-positive quantities and clamps large ones to MaxQty.
func Qty(n int) (int, bool) {
	if n < 1 {
		return 0, false
	}
	if n > MaxQty {
		return MaxQty, true
	}
	return n, true
}

// ID validates a simple resource identifier (product, cart row, order ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Seller validates the optional seller scope; empty means every seller.
func Seller(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reSeller.MatchString(s)
}

// Password enforces a simple length window for login checks.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 20 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
