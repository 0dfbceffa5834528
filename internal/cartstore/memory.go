package cartstore

import (
	"context"
	"sync"

	"storecart/internal/domain"
)

// Memory keeps the cart in process memory only.
type Memory struct {
	mu    sync.Mutex
	items []domain.LineItem
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load(context.Context) ([]domain.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.LineItem(nil), m.items...), nil
}

func (m *Memory) Save(_ context.Context, items []domain.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]domain.LineItem(nil), items...)
	return nil
}
