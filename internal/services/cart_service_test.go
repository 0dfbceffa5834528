package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storecart/internal/domain"
	"storecart/internal/services"
)

func TestAddMergesSameProduct(t *testing.T) {
	ctx := context.Background()
	store := &blobStore{}
	cart := services.NewCart(store, nil)

	require.NoError(t, cart.AddItem(ctx, line("A", "10", 2)))
	require.NoError(t, cart.AddItem(ctx, line("A", "10", 3)))

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, items, store.items)
}

func TestAddNewProductAppends(t *testing.T) {
	ctx := context.Background()
	cart := services.NewCart(&blobStore{}, nil)
	require.NoError(t, cart.AddItem(ctx, line("A", "10", 2)))
	before := cart.Items()

	require.NoError(t, cart.AddItem(ctx, line("B", "5", 1)))
	after := cart.Items()
	require.Len(t, after, 2)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, "B", after[1].ProductID)
}

func TestAddRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	store := &blobStore{}
	cart := services.NewCart(store, nil)

	assert.ErrorIs(t, cart.AddItem(ctx, line("A", "10", 0)), services.ErrInvalidQuantity)
	assert.ErrorIs(t, cart.AddItem(ctx, line("", "10", 1)), services.ErrMissingProduct)
	assert.Empty(t, cart.Items())
	assert.Zero(t, store.saves)
}

func TestAddRevertsWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	store := &blobStore{}
	cart := services.NewCart(store, nil)
	require.NoError(t, cart.AddItem(ctx, line("A", "10", 1)))

	store.saveErr = errBackend
	err := cart.AddItem(ctx, line("A", "10", 4))
	require.ErrorIs(t, err, errBackend)
	assert.Equal(t, 1, cart.Items()[0].Quantity)
}

func TestRemoveByKey(t *testing.T) {
	ctx := context.Background()
	cart := services.NewCart(&blobStore{}, nil)
	for _, it := range []domain.LineItem{line("A", "1", 1), line("B", "2", 1), line("C", "3", 1)} {
		require.NoError(t, cart.AddItem(ctx, it))
	}

	require.NoError(t, cart.RemoveItem(ctx, "B"))
	items := cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].ProductID)
	assert.Equal(t, "C", items[1].ProductID)

	require.NoError(t, cart.RemoveItem(ctx, "missing"))
	assert.Equal(t, items, cart.Items())
}

func TestClearAlwaysEmpties(t *testing.T) {
	ctx := context.Background()
	store := &blobStore{}
	cart := services.NewCart(store, nil)
	require.NoError(t, cart.Clear(ctx))
	assert.Empty(t, cart.Items())

	require.NoError(t, cart.AddItem(ctx, line("A", "1", 3)))
	require.NoError(t, cart.Clear(ctx))
	assert.Empty(t, cart.Items())
	assert.Empty(t, store.items)
	assert.True(t, cart.Total().IsZero())
}

func TestToggleTwiceRestoresFlag(t *testing.T) {
	cart := services.NewCart(&blobStore{}, nil)
	start := cart.Visible()
	cart.ToggleVisibility()
	cart.ToggleVisibility()
	assert.Equal(t, start, cart.Visible())
}

func TestLoadKeepsStateOnFailure(t *testing.T) {
	ctx := context.Background()
	store := &blobStore{}
	cart := services.NewCart(store, nil)
	require.NoError(t, cart.AddItem(ctx, line("A", "1", 1)))

	store.loadErr = errBackend
	assert.ErrorIs(t, cart.Load(ctx), errBackend)
	assert.Len(t, cart.Items(), 1)

	store.loadErr = domain.ErrCorruptCart
	assert.ErrorIs(t, cart.Load(ctx), domain.ErrCorruptCart)
	assert.Len(t, cart.Items(), 1)
}

func TestViewReportsTotals(t *testing.T) {
	ctx := context.Background()
	u := &domain.User{ID: "u-bob", Name: "bob"}
	cart := services.NewCart(&blobStore{}, u)
	require.NoError(t, cart.AddItem(ctx, line("A", "10", 2)))
	require.NoError(t, cart.AddItem(ctx, line("B", "5", 1)))

	v := cart.View()
	assert.Equal(t, 3, v.Count)
	assert.True(t, v.Total.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "B", v.Avatar)
	assert.Equal(t, "B", cart.Avatar())
	assert.Same(t, u, v.User)

	empty := services.NewCart(&blobStore{}, nil).View()
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Avatar)
}

func TestRowStoreNeedsUser(t *testing.T) {
	ctx := context.Background()
	store := &rowStore{}
	cart := services.NewCart(store, nil)

	assert.ErrorIs(t, cart.AddItem(ctx, line("A", "1", 1)), services.ErrNotAuthenticated)
	assert.ErrorIs(t, cart.RemoveItem(ctx, "1"), services.ErrNotAuthenticated)
	assert.ErrorIs(t, cart.Clear(ctx), services.ErrNotAuthenticated)
	assert.ErrorIs(t, cart.Load(ctx), services.ErrNotAuthenticated)
	assert.Empty(t, store.items)
}

func TestRowStoreWritesThroughAndReloads(t *testing.T) {
	ctx := context.Background()
	store := &rowStore{}
	cart := services.NewCart(store, alice)

	require.NoError(t, cart.AddItem(ctx, line("A", "10", 2)))
	require.NoError(t, cart.AddItem(ctx, line("A", "10", 1)))
	require.NoError(t, cart.AddItem(ctx, line("B", "4", 1)))

	items := cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].RowID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "2", items[1].RowID)

	require.NoError(t, cart.RemoveItem(ctx, "1"))
	items = cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].ProductID)
}

func TestRowStoreUpsertFailureLeavesCart(t *testing.T) {
	ctx := context.Background()
	store := &rowStore{}
	cart := services.NewCart(store, alice)
	require.NoError(t, cart.AddItem(ctx, line("A", "10", 1)))

	store.upsertErr = errBackend
	require.Error(t, cart.AddItem(ctx, line("B", "1", 1)))
	assert.Len(t, cart.Items(), 1)
}

func TestRowStoreKeepsMergeWhenReloadFails(t *testing.T) {
	ctx := context.Background()
	store := &rowStore{}
	cart := services.NewCart(store, alice)
	require.NoError(t, cart.AddItem(ctx, line("A", "10", 1)))

	store.loadErr = errBackend
	require.NoError(t, cart.AddItem(ctx, line("A", "10", 1)))
	assert.Equal(t, 2, cart.Items()[0].Quantity)
}

func TestRowStoreDeleteFailureKeepsLine(t *testing.T) {
	ctx := context.Background()
	store := &rowStore{}
	cart := services.NewCart(store, alice)
	require.NoError(t, cart.AddItem(ctx, line("A", "10", 1)))

	store.deleteErr = errBackend
	err := cart.RemoveItem(ctx, "1")
	require.True(t, errors.Is(err, errBackend))
	assert.Len(t, cart.Items(), 1)
}

func TestViewOfAndClearSeller(t *testing.T) {
	ctx := context.Background()
	store := &blobStore{}
	cart := services.NewCart(store, nil)
	north := line("A", "10", 1)
	north.SellerID = "seller-north"
	south := line("B", "4", 2)
	south.SellerID = "seller-south"
	require.NoError(t, cart.AddItem(ctx, north))
	require.NoError(t, cart.AddItem(ctx, south))

	v := cart.ViewOf("seller-south")
	require.Len(t, v.Items, 1)
	assert.Equal(t, 2, v.Count)
	assert.True(t, v.Total.Equal(decimal.NewFromInt(8)))
	assert.Len(t, cart.View().Items, 2)
	assert.Empty(t, cart.ViewOf("seller-west").Items)

	require.NoError(t, cart.ClearSeller(ctx, "seller-north"))
	left := cart.Items()
	require.Len(t, left, 1)
	assert.Equal(t, "B", left[0].ProductID)
	assert.Len(t, store.items, 1)
}
