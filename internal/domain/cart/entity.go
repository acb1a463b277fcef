package cart

import (
	"errors"
	"math"
	"strings"

	common "modaorganica/internal/domain/common"
	productdom "modaorganica/internal/domain/product"
)

var (
	ErrInvalidCart = errors.New("cart: invalid")
)

// SuggestedMaxQuantity is the product-detail selector ceiling. The cart itself only enforces the floor.
const SuggestedMaxQuantity = 10

// MaxLineQuantity caps a single line so merges never overflow.
const MaxLineQuantity = math.MaxInt32

// LineItem is one row of the cart.
type LineItem struct {
	ID       productdom.ID `json:"id"`
	Name     string        `json:"name"`
	Price    common.Money  `json:"price"`
	Quantity int           `json:"quantity"`
	ImageURL string        `json:"imageUrl,omitempty"`
}

// LineTotal is price × quantity.
func (it LineItem) LineTotal() common.Money {
	return it.Price.Mul(it.Quantity)
}

// ProductRef is the minimum a caller needs to put a product in the cart.
type ProductRef struct {
	ID       productdom.ID
	Name     string
	Price    common.Money
	ImageURL string
}

// RefFromProduct builds a ProductRef from a catalogue product.
func RefFromProduct(p productdom.Product) ProductRef {
	return ProductRef{ID: p.ID, Name: p.Name, Price: p.Price, ImageURL: p.ImageURL}
}

// Cart is an immutable-by-convention value: every operation returns a new Cart.
//   - Items are unique by ID and keep insertion order.
//   - Subtotal, Total and ItemCount are derived from Items by recompute.
//   - ItemCount counts distinct line items, not units (see UnitCount).
type Cart struct {
	Items     []LineItem   `json:"items"`
	Subtotal  common.Money `json:"subtotal"`
	Total     common.Money `json:"total"`
	ItemCount int          `json:"itemCount"`
}

// Empty returns the empty-cart state.
func Empty() Cart {
	return Cart{Items: []LineItem{}}
}

// IsEmpty reports whether the cart has no line items.
func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

// UnitCount is the sum of quantities across all line items.
func (c Cart) UnitCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Find returns the line item for id.
func (c Cart) Find(id productdom.ID) (LineItem, bool) {
	idx := findIndex(c.Items, id.Normalize())
	if idx < 0 {
		return LineItem{}, false
	}
	return c.Items[idx], true
}

// Add merges p into the cart. An existing line gets qty more units; a new line starts at qty.
// qty below 1 counts as 1.
func (c Cart) Add(p ProductRef, qty int) (Cart, error) {
	id := p.ID.Normalize()
	name := strings.TrimSpace(p.Name)
	if id.IsZero() || name == "" || p.Price.IsNegative() {
		return c, ErrInvalidCart
	}
	qty = clampQuantity(qty)

	items := cloneItems(c.Items)
	if idx := findIndex(items, id); idx >= 0 {
		items[idx].Quantity = addQuantity(items[idx].Quantity, qty)
	} else {
		items = append(items, LineItem{
			ID:       id,
			Name:     name,
			Price:    p.Price,
			Quantity: qty,
			ImageURL: strings.TrimSpace(p.ImageURL),
		})
	}
	return recompute(items), nil
}

// Remove drops the line for id. Absent ids are a no-op.
func (c Cart) Remove(id productdom.ID) Cart {
	items := cloneItems(c.Items)
	if idx := findIndex(items, id.Normalize()); idx >= 0 {
		items = append(items[:idx], items[idx+1:]...)
	}
	return recompute(items)
}

// SetQuantity sets the line quantity to qty clamped into [1, MaxLineQuantity]. Absent ids are a no-op.
func (c Cart) SetQuantity(id productdom.ID, qty int) Cart {
	qty = clampQuantity(qty)
	items := cloneItems(c.Items)
	if idx := findIndex(items, id.Normalize()); idx >= 0 {
		items[idx].Quantity = qty
	}
	return recompute(items)
}

// Normalize repairs a cart read from storage: drops invalid rows, merges duplicate ids,
// clamps quantities and recomputes the derived fields. Stored totals are never trusted.
func (c Cart) Normalize() Cart {
	items := make([]LineItem, 0, len(c.Items))
	for _, it := range c.Items {
		it.ID = it.ID.Normalize()
		it.Name = strings.TrimSpace(it.Name)
		if it.ID.IsZero() || it.Name == "" || it.Price.IsNegative() {
			continue
		}
		it.Quantity = clampQuantity(it.Quantity)
		if idx := findIndex(items, it.ID); idx >= 0 {
			items[idx].Quantity = addQuantity(items[idx].Quantity, it.Quantity)
			continue
		}
		items = append(items, it)
	}
	return recompute(items)
}

// Snapshot returns a deep copy safe to hand to subscribers.
func (c Cart) Snapshot() Cart {
	out := c
	out.Items = cloneItems(c.Items)
	return out
}

func recompute(items []LineItem) Cart {
	if items == nil {
		items = []LineItem{}
	}
	subtotal := common.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	return Cart{
		Items:     items,
		Subtotal:  subtotal,
		Total:     subtotal,
		ItemCount: len(items),
	}
}

func clampQuantity(q int) int {
	switch {
	case q < 1:
		return 1
	case q > MaxLineQuantity:
		return MaxLineQuantity
	}
	return q
}

// addQuantity saturates at MaxLineQuantity. Both inputs are already clamped.
func addQuantity(a, b int) int {
	if a > MaxLineQuantity-b {
		return MaxLineQuantity
	}
	return a + b
}

func findIndex(items []LineItem, id productdom.ID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
