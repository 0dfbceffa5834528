package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"storecart/internal/domain"
	applog "storecart/internal/log"
)

// Owner identifies whose cart a request touches. SellerID narrows what the
// request sees of that cart; it is not part of the cart's identity.
type Owner struct {
	SessionID string
	User      *domain.User
	SellerID  string
}

func (o Owner) Key() string {
	if o.User != nil {
		return "user:" + o.User.ID
	}
	return "sid:" + o.SessionID
}

// StoreFactory picks the persistence backend for an owner.
type StoreFactory func(o Owner) CartStore

// CartRegistry hosts one long-lived Cart per owner. The first request for an
// owner loads the cart; concurrent first requests share that load. Guests are
// only registered once they write, see Peek.
type CartRegistry struct {
	factory StoreFactory

	mu    sync.Mutex
	carts map[string]*Cart
	sfg   singleflight.Group
}

func NewCartRegistry(factory StoreFactory) *CartRegistry {
	return &CartRegistry{factory: factory, carts: map[string]*Cart{}}
}

func (r *CartRegistry) lookup(key string) (*Cart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[key]
	return c, ok
}

// Get returns the owner's cart. A cart whose first load fails is still
// returned (empty); the failure has already been logged.
func (r *CartRegistry) Get(ctx context.Context, o Owner) (*Cart, error) {
	key := o.Key()
	if c, ok := r.lookup(key); ok {
		return c, nil
	}
	v, err, _ := r.sfg.Do(key, func() (any, error) {
		if c, ok := r.lookup(key); ok {
			return c, nil
		}
		c := NewCart(r.factory(o), o.User)
		if err := c.Load(ctx); err != nil && errors.Is(err, ErrNotAuthenticated) {
			return nil, err
		}
		r.mu.Lock()
		r.carts[key] = c
		r.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Cart), nil
}

// Peek is Get for reads. A guest with no registered cart gets a loaded cart
// that is not kept, so sessions that never write cost nothing after the
// request.
func (r *CartRegistry) Peek(ctx context.Context, o Owner) (*Cart, error) {
	if o.User != nil {
		return r.Get(ctx, o)
	}
	if c, ok := r.lookup(o.Key()); ok {
		return c, nil
	}
	c := NewCart(r.factory(o), nil)
	if err := c.Load(ctx); err != nil && errors.Is(err, ErrNotAuthenticated) {
		return nil, err
	}
	return c, nil
}

// Len reports how many carts are held in memory.
func (r *CartRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

// Forget drops the owner's cart from memory; its store is untouched.
func (r *CartRegistry) Forget(o Owner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, o.Key())
}

// Adopt moves the lines of a guest cart into a signed-in owner's cart and
// empties the guest cart.
func (r *CartRegistry) Adopt(ctx context.Context, guest, member Owner) error {
	from, err := r.Peek(ctx, guest)
	if err != nil {
		return err
	}
	items := from.Items()
	if len(items) == 0 {
		r.Forget(guest)
		return nil
	}
	to, err := r.Get(ctx, member)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := to.AddItem(ctx, it); err != nil {
			return fmt.Errorf("adopt guest cart: %w", err)
		}
	}
	if err := from.Clear(ctx); err != nil {
		return err
	}
	r.Forget(guest)
	applog.Audit(nil, "cart.adopt", map[string]any{"user_id": member.User.ID, "lines": len(items)})
	return nil
}
