package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	cartdom "modaorganica/internal/domain/cart"
	common "modaorganica/internal/domain/common"
	productdom "modaorganica/internal/domain/product"
)

var (
	refAnillo = cartdom.ProductRef{ID: "1", Name: "Anillo Plata", Price: common.MustParseMoney("250")}
	refCollar = cartdom.ProductRef{ID: "2", Name: "Collar Oro", Price: common.MustParseMoney("450")}
)

func TestCartStore_StartsEmptyWhenNothingPersisted(t *testing.T) {
	s := NewCartStore(context.Background(), newMemStateRepo(), "", nil)
	assert.True(t, s.GetCart().IsEmpty())
	assert.Equal(t, cartdom.StorageKey, s.Key())
}

func TestCartStore_PersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	repo := newMemStateRepo()
	s := NewCartStore(ctx, repo, "", nil)

	_, err := s.AddProduct(ctx, refAnillo, 1)
	require.NoError(t, err)
	_, err = s.AddProduct(ctx, refCollar, 2)
	require.NoError(t, err)

	assert.JSONEq(t, `{"items":[
		{"id":"1","name":"Anillo Plata","price":250,"quantity":1},
		{"id":"2","name":"Collar Oro","price":450,"quantity":2}
	],"subtotal":1150,"total":1150,"itemCount":2}`, repo.raw("cart"))

	reloaded := NewCartStore(ctx, repo, "", nil)
	got := reloaded.GetCart()
	require.Len(t, got.Items, 2)
	assert.Equal(t, "1150.00", got.Subtotal.String())
}

func TestCartStore_CorruptStateFallsBackToEmptyAndWarns(t *testing.T) {
	repo := newMemStateRepo()
	repo.data["cart"] = []byte("{not json")

	core, logs := observer.New(zap.WarnLevel)
	s := NewCartStore(context.Background(), repo, "", zap.New(core))

	assert.True(t, s.GetCart().IsEmpty())
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "decode", fields["op"])
	assert.Equal(t, "cart", fields["key"])
	assert.Contains(t, fields["error"], "cart: persistence decode")
}

func TestCartStore_SaveFailureKeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	repo := newMemStateRepo()
	repo.saveErr = errBoom

	core, logs := observer.New(zap.WarnLevel)
	s := NewCartStore(ctx, repo, "", zap.New(core))

	c, err := s.AddProduct(ctx, refAnillo, 1)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
	assert.Len(t, s.GetCart().Items, 1)
	assert.Equal(t, 1, logs.FilterMessage("cart state not saved").Len())
}

func TestCartStore_SubscribeGetsCurrentThenEveryChange(t *testing.T) {
	ctx := context.Background()
	s := NewCartStore(ctx, newMemStateRepo(), "", nil)
	_, _ = s.AddProduct(ctx, refAnillo, 1)

	var seen []int
	unsub := s.Subscribe(func(c cartdom.Cart) { seen = append(seen, c.UnitCount()) })

	_, _ = s.AddProduct(ctx, refAnillo, 1)
	s.UpdateQuantity(ctx, "1", 5)
	s.RemoveProduct(ctx, "404")
	unsub()
	s.Clear(ctx)

	assert.Equal(t, []int{1, 2, 5, 5}, seen)
}

func TestCartStore_QuantityFloorAndNoops(t *testing.T) {
	ctx := context.Background()
	s := NewCartStore(ctx, newMemStateRepo(), "", nil)
	_, _ = s.AddProduct(ctx, refCollar, 0)

	c := s.UpdateQuantity(ctx, "2", -3)
	assert.Equal(t, 1, c.Items[0].Quantity)

	c = s.RemoveProduct(ctx, "missing")
	assert.Len(t, c.Items, 1)

	c = s.Clear(ctx)
	assert.True(t, c.IsEmpty())
	c = s.Clear(ctx)
	assert.True(t, c.IsEmpty())
}

func TestCartStore_RejectedActionLeavesCartAlone(t *testing.T) {
	ctx := context.Background()
	repo := newMemStateRepo()
	s := NewCartStore(ctx, repo, "", nil)

	_, err := s.AddProduct(ctx, cartdom.ProductRef{ID: "", Name: "x"}, 1)
	assert.ErrorIs(t, err, cartdom.ErrInvalidCart)
	assert.True(t, s.GetCart().IsEmpty())
	assert.Equal(t, 0, repo.saves)
}

func TestCartStore_ConcurrentDispatchKeepsSubtotalConsistent(t *testing.T) {
	ctx := context.Background()
	s := NewCartStore(ctx, newMemStateRepo(), "", nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AddProduct(ctx, refAnillo, 1)
		}()
	}
	wg.Wait()

	c := s.GetCart()
	require.Len(t, c.Items, 1)
	assert.Equal(t, 50, c.Items[0].Quantity)
	assert.Equal(t, "12500.00", c.Subtotal.String())
}

func TestCartStore_ScopedKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	repo := newMemStateRepo()
	a := NewCartStore(ctx, repo, cartdom.KeyFor("a"), nil)
	b := NewCartStore(ctx, repo, cartdom.KeyFor("b"), nil)

	_, _ = a.AddProduct(ctx, refAnillo, 1)
	assert.True(t, b.GetCart().IsEmpty())
	assert.NotEmpty(t, repo.raw("cart:a"))

	require.NoError(t, a.Forget(ctx))
	assert.Empty(t, repo.raw("cart:a"))
	assert.Equal(t, productdom.ID("1"), a.GetCart().Items[0].ID)
}
