package services_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"storecart/internal/domain"
)

var errBackend = errors.New("backend unavailable")

// blobStore is an in-memory CartStore with injectable failures.
type blobStore struct {
	mu      sync.Mutex
	items   []domain.LineItem
	loadErr error
	saveErr error
	saves   int
}

func (s *blobStore) Load(context.Context) ([]domain.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return append([]domain.LineItem(nil), s.items...), nil
}

func (s *blobStore) Save(_ context.Context, items []domain.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.items = append([]domain.LineItem(nil), items...)
	return nil
}

// rowStore mimics a relational store that hands out row ids.
type rowStore struct {
	blobStore
	next      int
	upsertErr error
	deleteErr error
}

func (s *rowStore) Upsert(_ context.Context, item domain.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	for i := range s.items {
		if s.items[i].ProductID == item.ProductID {
			s.items[i].Quantity += item.Quantity
			return nil
		}
	}
	s.next++
	item.RowID = string(rune('0' + s.next))
	s.items = append(s.items, item)
	return nil
}

func (s *rowStore) Delete(_ context.Context, rowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	kept := s.items[:0]
	for _, it := range s.items {
		if it.RowID != rowID {
			kept = append(kept, it)
		}
	}
	s.items = kept
	return nil
}

func (s *rowStore) DeleteAll(_ context.Context, sellerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	var kept []domain.LineItem
	for _, it := range s.items {
		if sellerID != "" && it.SellerID != sellerID {
			kept = append(kept, it)
		}
	}
	s.items = kept
	return nil
}

type orderBook struct {
	mu        sync.Mutex
	orders    map[string]domain.Order
	createErr error
}

func newOrderBook() *orderBook { return &orderBook{orders: map[string]domain.Order{}} }

func (b *orderBook) Create(_ context.Context, o domain.Order) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.createErr != nil {
		return b.createErr
	}
	b.orders[o.ID] = o
	return nil
}

func (b *orderBook) MarkForReconciliation(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[id]
	if !ok {
		return sql.ErrNoRows
	}
	o.Status = domain.OrderStatusNeedsReconciliation
	b.orders[id] = o
	return nil
}

type addresses map[string]domain.Address

func (a addresses) Address(_ context.Context, userID string) (domain.Address, error) {
	addr, ok := a[userID]
	if !ok {
		return domain.Address{}, sql.ErrNoRows
	}
	return addr, nil
}

type notifierFunc func(context.Context, domain.Order) error

func (f notifierFunc) Notify(ctx context.Context, o domain.Order) error { return f(ctx, o) }

func line(id string, price string, qty int) domain.LineItem {
	return domain.LineItem{ProductID: id, Title: id, UnitPrice: decimal.RequireFromString(price), Quantity: qty}
}

var alice = &domain.User{ID: "u-alice", Name: "Alice", Email: "alice@storecart.test"}
