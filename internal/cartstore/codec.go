// Package cartstore holds the blob-backed cart stores: process memory, an
// HTTP cookie and a redis key. All three keep the same JSON array shape.
package cartstore

import (
	"encoding/json"
	"fmt"

	"storecart/internal/domain"
)

// Encode renders items as a JSON array; an empty cart is "[]".
func Encode(items []domain.LineItem) ([]byte, error) {
	if items == nil {
		items = []domain.LineItem{}
	}
	return json.Marshal(items)
}

// Decode parses a stored payload. Empty input is an empty cart. Anything that
// is not an array of lines with a product id and a positive quantity fails
// with domain.ErrCorruptCart.
func Decode(b []byte) ([]domain.LineItem, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var items []domain.LineItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptCart, err)
	}
	for i, it := range items {
		if it.ProductID == "" || it.Quantity < 1 {
			return nil, fmt.Errorf("%w: line %d has id %q and quantity %d", domain.ErrCorruptCart, i, it.ProductID, it.Quantity)
		}
	}
	return items, nil
}
