package cart

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "modaorganica/internal/domain/common"
	productdom "modaorganica/internal/domain/product"
)

var (
	anillo = ProductRef{ID: "1", Name: "Anillo Plata", Price: common.MustParseMoney("250")}
	collar = ProductRef{ID: "2", Name: "Collar Oro", Price: common.MustParseMoney("450")}
)

func mustAdd(t *testing.T, c Cart, p ProductRef, qty int) Cart {
	t.Helper()
	out, err := c.Add(p, qty)
	require.NoError(t, err)
	return out
}

func TestAdd_MergesSameID(t *testing.T) {
	c := mustAdd(t, Empty(), anillo, 1)
	c = mustAdd(t, c, anillo, 1)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, "500.00", c.Subtotal.String())
	assert.Equal(t, 1, c.ItemCount)
	assert.Equal(t, 2, c.UnitCount())
}

func TestAdd_ExplicitQuantityAndOrder(t *testing.T) {
	c := mustAdd(t, Empty(), anillo, 1)
	c = mustAdd(t, c, collar, 2)

	require.Len(t, c.Items, 2)
	assert.Equal(t, productdom.ID("1"), c.Items[0].ID)
	assert.Equal(t, productdom.ID("2"), c.Items[1].ID)
	assert.Equal(t, "1150.00", c.Subtotal.String())
	assert.True(t, c.Total.Equal(c.Subtotal))
	assert.Equal(t, 2, c.ItemCount)
}

func TestAdd_NonPositiveQuantityCountsAsOne(t *testing.T) {
	c := mustAdd(t, Empty(), anillo, 0)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestAdd_RejectsInvalidProduct(t *testing.T) {
	_, err := Empty().Add(ProductRef{ID: " ", Name: "x"}, 1)
	assert.ErrorIs(t, err, ErrInvalidCart)
	_, err = Empty().Add(ProductRef{ID: "1", Name: "x", Price: common.MustParseMoney("-1")}, 1)
	assert.ErrorIs(t, err, ErrInvalidCart)
}

func TestSetQuantity_ClampsToOne(t *testing.T) {
	c := mustAdd(t, Empty(), collar, 3)

	for _, q := range []int{0, -4} {
		c = c.SetQuantity("2", q)
		assert.Equal(t, 1, c.Items[0].Quantity)
		assert.Equal(t, "450.00", c.Subtotal.String())
	}

	c = c.SetQuantity("2", 25)
	assert.Equal(t, 25, c.Items[0].Quantity, "no ceiling in the cart")
}

func TestQuantity_SaturatesAtLineMaximum(t *testing.T) {
	c := mustAdd(t, Empty(), anillo, math.MaxInt)
	c = mustAdd(t, c, anillo, 1)
	c = mustAdd(t, c, anillo, math.MaxInt)

	require.Len(t, c.Items, 1)
	assert.Equal(t, MaxLineQuantity, c.Items[0].Quantity)
	assert.True(t, c.Subtotal.IsPositive())
	assert.Equal(t, anillo.Price.Mul(MaxLineQuantity).String(), c.Subtotal.String())

	c = c.SetQuantity("1", math.MaxInt)
	assert.Equal(t, MaxLineQuantity, c.Items[0].Quantity)

	stored := Cart{Items: []LineItem{
		{ID: "1", Name: "Anillo Plata", Price: anillo.Price, Quantity: math.MaxInt},
		{ID: "1", Name: "Anillo Plata", Price: anillo.Price, Quantity: math.MaxInt},
	}}.Normalize()
	require.Len(t, stored.Items, 1)
	assert.Equal(t, MaxLineQuantity, stored.Items[0].Quantity)
	assert.False(t, stored.Subtotal.IsNegative())
}

func TestRemoveAndSetQuantity_UnknownIDIsNoop(t *testing.T) {
	c := mustAdd(t, Empty(), anillo, 1)

	for _, got := range []Cart{c.Remove("404"), c.SetQuantity("404", 3)} {
		require.Len(t, got.Items, 1)
		assert.Equal(t, 1, got.Items[0].Quantity)
		assert.True(t, c.Subtotal.Equal(got.Subtotal))
	}

	c = c.Remove("1")
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Subtotal.IsZero())
	assert.Equal(t, 0, c.ItemCount)
}

func TestOperationsDoNotAliasItems(t *testing.T) {
	c1 := mustAdd(t, Empty(), anillo, 1)
	c2 := c1.SetQuantity("1", 5)
	assert.Equal(t, 1, c1.Items[0].Quantity)
	assert.Equal(t, 5, c2.Items[0].Quantity)
}

func TestSubtotalInvariant_RandomOperations(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	c := Empty()

	for step := 0; step < 500; step++ {
		id := productdom.ID(fmt.Sprint(r.IntN(6)))
		switch r.IntN(4) {
		case 0, 1:
			price := common.MoneyFromCents(int64(r.IntN(100000)))
			var err error
			c, err = c.Add(ProductRef{ID: id, Name: "p" + id.String(), Price: price}, r.IntN(4))
			require.NoError(t, err)
		case 2:
			c = c.Remove(id)
		case 3:
			c = c.SetQuantity(id, r.IntN(5)-2)
		}

		want := common.Zero
		seen := map[productdom.ID]bool{}
		for _, it := range c.Items {
			require.False(t, seen[it.ID], "duplicate id %s", it.ID)
			seen[it.ID] = true
			require.GreaterOrEqual(t, it.Quantity, 1)
			want = want.Add(it.Price.Mul(it.Quantity))
		}
		require.True(t, want.Equal(c.Subtotal), "step %d", step)
		require.Equal(t, len(c.Items), c.ItemCount)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	c := mustAdd(t, Empty(), anillo, 1)
	c = mustAdd(t, c, collar, 2)

	raw, err := Encode(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"items":[
			{"id":"1","name":"Anillo Plata","price":250.00,"quantity":1},
			{"id":"2","name":"Collar Oro","price":450.00,"quantity":2}
		],
		"subtotal":1150.00,"total":1150.00,"itemCount":2}`, string(raw))

	back, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, back.Items, 2)
	for i := range c.Items {
		assert.Equal(t, c.Items[i].ID, back.Items[i].ID)
		assert.Equal(t, c.Items[i].Quantity, back.Items[i].Quantity)
		assert.True(t, c.Items[i].Price.Equal(back.Items[i].Price))
	}
	assert.True(t, c.Subtotal.Equal(back.Subtotal))
}

func TestDecode_MissingAndCorrupt(t *testing.T) {
	c, err := Decode(nil)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	c, err = Decode([]byte("  null "))
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	c, err = Decode([]byte(`{"items": [ {"id": 1, "name": `))
	assert.Error(t, err)
	assert.True(t, c.IsEmpty())
}

func TestDecode_RepairsLegacyShapes(t *testing.T) {
	raw := []byte(`{"items":[
		{"id":1,"name":"Anillo Plata","price":250,"quantity":1},
		{"id":"1","name":"Anillo Plata","price":250,"quantity":2},
		{"id":3,"name":"","price":10,"quantity":1},
		{"id":4,"name":"Aretes","price":"99.5","quantity":0}
	],"subtotal":99999,"total":1,"itemCount":42}`)

	c, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, 1, c.Items[1].Quantity)
	assert.Equal(t, "849.50", c.Subtotal.String())
	assert.Equal(t, 2, c.ItemCount)
}

func TestActions(t *testing.T) {
	c, err := AddProductAction{Product: anillo, Quantity: 2}.Apply(Empty())
	require.NoError(t, err)
	c, _ = UpdateQuantityAction{ID: "1", Quantity: 0}.Apply(c)
	assert.Equal(t, 1, c.Items[0].Quantity)
	c, _ = RemoveProductAction{ID: "1"}.Apply(c)
	assert.True(t, c.IsEmpty())
	c, _ = ClearAction{}.Apply(mustAdd(t, Empty(), collar, 1))
	assert.True(t, c.IsEmpty())
	assert.Equal(t, "clear", ClearAction{}.Name())
}

func TestKeyFor(t *testing.T) {
	assert.Equal(t, "cart", KeyFor(""))
	assert.Equal(t, "cart:abc", KeyFor("abc"))
}
