package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"storecart/internal/domain"
	applog "storecart/internal/log"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrMissingProduct   = errors.New("missing product id")
)

// CartStore is the persistence port a Cart depends on.
type CartStore interface {
	Load(ctx context.Context) ([]domain.LineItem, error)
	Save(ctx context.Context, items []domain.LineItem) error
}

// RowStore is a CartStore that keeps one remote row per line for a signed-in
// user. Carts write through it and then reload, so the store's view wins over
// the local merge.
type RowStore interface {
	CartStore
	Upsert(ctx context.Context, item domain.LineItem) error
	Delete(ctx context.Context, rowID string) error
	// DeleteAll removes the rows of sellerID, or every row when it is empty.
	DeleteAll(ctx context.Context, sellerID string) error
}

// Cart is the state container for one shopper. Operations are serialised;
// readers get copies.
type Cart struct {
	mu      sync.Mutex
	store   CartStore
	user    *domain.User
	items   []domain.LineItem
	visible bool
}

func NewCart(store CartStore, user *domain.User) *Cart {
	return &Cart{store: store, user: user}
}

// CartView is the set of fields a page renders.
type CartView struct {
	User    *domain.User      `json:"user,omitempty"`
	Avatar  string            `json:"avatar,omitempty"`
	Items   []domain.LineItem `json:"items"`
	Visible bool              `json:"visible"`
	Count   int               `json:"count"`
	Total   decimal.Decimal   `json:"total"`
}

func (c *Cart) View() CartView {
	return c.ViewOf("")
}

// ViewOf is View restricted to one seller's lines. An empty seller means
// every line.
func (c *Cart) ViewOf(seller string) CartView {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := ofSeller(c.items, seller)
	if items == nil {
		items = []domain.LineItem{}
	}
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return CartView{
		User:    c.user,
		Avatar:  c.user.Avatar(),
		Items:   items,
		Visible: c.visible,
		Count:   n,
		Total:   domain.Total(items),
	}
}

func (c *Cart) Items() []domain.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.items)
}

func (c *Cart) User() *domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

func (c *Cart) Avatar() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user.Avatar()
}

func (c *Cart) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Total(c.items)
}

// ToggleVisibility flips the cart drawer flag and returns the new value.
func (c *Cart) ToggleVisibility() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = !c.visible
	return c.visible
}

func (c *Cart) rowStore() (RowStore, bool) {
	rs, ok := c.store.(RowStore)
	return rs, ok
}

// guard rejects row-store operations without a signed-in user.
func (c *Cart) guard() error {
	if _, ok := c.rowStore(); ok && c.user == nil {
		return ErrNotAuthenticated
	}
	return nil
}

func (c *Cart) userID() string {
	if c.user == nil {
		return ""
	}
	return c.user.ID
}

// Load replaces the lines with the store's copy. On any failure the current
// lines are kept.
func (c *Cart) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard(); err != nil {
		return err
	}
	return c.loadLocked(ctx)
}

func (c *Cart) loadLocked(ctx context.Context) error {
	items, err := c.store.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCorruptCart) {
			applog.Warn(nil, "cart.load.corrupt", err, map[string]any{"user_id": c.userID()})
		} else {
			applog.Error(nil, "cart.load.fail", err, map[string]any{"user_id": c.userID()})
		}
		return fmt.Errorf("load cart: %w", err)
	}
	c.items = items
	return nil
}

// AddItem merges item into the cart, adding its quantity to an existing line
// for the same product, then persists. Row stores are reloaded afterwards.
func (c *Cart) AddItem(ctx context.Context, item domain.LineItem) error {
	if item.ProductID == "" {
		return ErrMissingProduct
	}
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}
	item.RowID = ""

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard(); err != nil {
		return err
	}

	prev := clone(c.items)
	c.items = merge(c.items, item)

	if rs, ok := c.rowStore(); ok {
		if err := rs.Upsert(ctx, item); err != nil {
			c.items = prev
			applog.Error(nil, "cart.add.fail", err, map[string]any{"user_id": c.userID(), "product": item.ProductID})
			return fmt.Errorf("add item: %w", err)
		}
		// The row is committed; a failed reload keeps the provisional merge.
		_ = c.loadLocked(ctx)
		return nil
	}

	if err := c.store.Save(ctx, clone(c.items)); err != nil {
		c.items = prev
		applog.Error(nil, "cart.save.fail", err, map[string]any{"product": item.ProductID})
		return fmt.Errorf("add item: %w", err)
	}
	return nil
}

// RemoveItem drops the line with the given key (row id for row stores,
// product id otherwise). An unknown key changes nothing.
func (c *Cart) RemoveItem(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard(); err != nil {
		return err
	}

	if rs, ok := c.rowStore(); ok {
		if err := rs.Delete(ctx, key); err != nil {
			applog.Error(nil, "cart.remove.fail", err, map[string]any{"user_id": c.userID(), "row": key})
			return fmt.Errorf("remove item: %w", err)
		}
		// Same as AddItem: the delete stands even if the reload fails.
		_ = c.loadLocked(ctx)
		return nil
	}

	kept := make([]domain.LineItem, 0, len(c.items))
	for _, it := range c.items {
		if it.Key() != key {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(c.items) {
		return nil
	}
	if err := c.store.Save(ctx, clone(kept)); err != nil {
		applog.Error(nil, "cart.save.fail", err, map[string]any{"removed": key})
		return fmt.Errorf("remove item: %w", err)
	}
	c.items = kept
	return nil
}

// Clear empties the cart and persists the empty state.
func (c *Cart) Clear(ctx context.Context) error {
	return c.ClearSeller(ctx, "")
}

// ClearSeller drops the lines of one seller and keeps the rest.
func (c *Cart) ClearSeller(ctx context.Context, seller string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard(); err != nil {
		return err
	}
	return c.clearLocked(ctx, seller)
}

func (c *Cart) clearLocked(ctx context.Context, seller string) error {
	kept := otherSellers(c.items, seller)
	var err error
	if rs, ok := c.rowStore(); ok {
		err = rs.DeleteAll(ctx, seller)
	} else {
		err = c.store.Save(ctx, clone(kept))
	}
	if err != nil {
		applog.Error(nil, "cart.clear.fail", err, map[string]any{"user_id": c.userID(), "seller": seller})
		return fmt.Errorf("clear cart: %w", err)
	}
	c.items = kept
	return nil
}

// Checkout runs flow over every line in the cart.
func (c *Cart) Checkout(ctx context.Context, flow *CheckoutService) (CheckoutResult, error) {
	return c.CheckoutSeller(ctx, flow, "")
}

// CheckoutSeller runs flow over one seller's lines, or every line when seller
// is empty, and clears only those lines. Row-backed lines are re-read from the
// store when the total is computed. The cart stays locked for the whole run.
func (c *Cart) CheckoutSeller(ctx context.Context, flow *CheckoutService, seller string) (CheckoutResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := func(ctx context.Context) ([]domain.LineItem, error) {
		if _, ok := c.rowStore(); ok && c.user != nil {
			if err := c.loadLocked(ctx); err != nil {
				return nil, err
			}
		}
		return ofSeller(c.items, seller), nil
	}
	clear := func(ctx context.Context) error { return c.clearLocked(ctx, seller) }
	return flow.Run(ctx, c.user, lines, clear)
}

func merge(items []domain.LineItem, item domain.LineItem) []domain.LineItem {
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			return items
		}
	}
	return append(items, item)
}

func ofSeller(items []domain.LineItem, seller string) []domain.LineItem {
	if seller == "" {
		return clone(items)
	}
	var out []domain.LineItem
	for _, it := range items {
		if it.SellerID == seller {
			out = append(out, it)
		}
	}
	return out
}

// otherSellers is what survives clearing seller; nothing when seller is empty.
func otherSellers(items []domain.LineItem, seller string) []domain.LineItem {
	if seller == "" {
		return nil
	}
	var out []domain.LineItem
	for _, it := range items {
		if it.SellerID != seller {
			out = append(out, it)
		}
	}
	return out
}

func clone(items []domain.LineItem) []domain.LineItem {
	if items == nil {
		return nil
	}
	return append([]domain.LineItem(nil), items...)
}
