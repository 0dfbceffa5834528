package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string          `db:"id"`
	Title     string          `db:"title"`
	MetaTitle string          `db:"meta_title"`
	Price     decimal.Decimal `db:"price"`
	Discount  decimal.Decimal `db:"discount"`
	Thumbnail string          `db:"thumbnail"`
	SellerID  string          `db:"seller_id"`
	Active    bool            `db:"active"`
}

// NetPrice is the unit price after discount, never below zero.
func (p Product) NetPrice() decimal.Decimal {
	net := p.Price.Sub(p.Discount)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// LineItem is one product and quantity in a cart. RowID is only set by
// row-backed stores.
type LineItem struct {
	RowID     string          `json:"row_id,omitempty" db:"cart_id"`
	ProductID string          `json:"id" db:"product_id"`
	Title     string          `json:"title" db:"title"`
	UnitPrice decimal.Decimal `json:"price" db:"price"`
	Thumbnail string          `json:"thumbnail,omitempty" db:"thumbnail"`
	Quantity  int             `json:"quantity" db:"quantity"`
	SellerID  string          `json:"seller_id,omitempty" db:"seller_id"`
}

// Key identifies the line for removal.
func (l LineItem) Key() string {
	if l.RowID != "" {
		return l.RowID
	}
	return l.ProductID
}

func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total sums unit price x quantity and rounds to cents, half away from zero.
func Total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum.Round(2)
}

type OrderStatus string

const (
	OrderStatusPending             OrderStatus = "pending"
	OrderStatusNeedsReconciliation OrderStatus = "needs_reconciliation"
)

type Order struct {
	ID           string          `db:"id" json:"id"`
	UserID       string          `db:"user_id" json:"user_id"`
	Status       OrderStatus     `db:"status" json:"status"`
	Total        decimal.Decimal `db:"total" json:"total"`
	ShipTo       string          `db:"ship_to" json:"ship_to"`
	ContactName  string          `db:"contact_name" json:"contact_name"`
	ContactEmail string          `db:"contact_email" json:"contact_email"`
	ContactPhone string          `db:"contact_phone" json:"contact_phone"`
	CreatedAt    string          `db:"created_at" json:"created_at"`
	Lines        []OrderLine     `db:"-" json:"lines,omitempty"`
}

type OrderLine struct {
	ProductID string          `db:"product_id" json:"product_id"`
	Title     string          `db:"title" json:"title"`
	UnitPrice decimal.Decimal `db:"price" json:"price"`
	Quantity  int             `db:"quantity" json:"quantity"`
	LineTotal decimal.Decimal `db:"line_total" json:"line_total"`
	SellerID  string          `db:"seller_id" json:"seller_id,omitempty"`
}

// Address is a shipping record joined with the owner's contact details.
type Address struct {
	UserID     string `db:"user_id"`
	Name       string `db:"name"`
	Email      string `db:"email"`
	Phone      string `db:"phone"`
	Line1      string `db:"line1"`
	Line2      string `db:"line2"`
	City       string `db:"city"`
	PostalCode string `db:"postal_code"`
	Country    string `db:"country"`
}

func (a Address) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.PostalCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
