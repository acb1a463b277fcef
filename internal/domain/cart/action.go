package cart

import productdom "modaorganica/internal/domain/product"

// Action is a cart mutation. Apply must be pure.
type Action interface {
	Apply(c Cart) (Cart, error)
	Name() string
}

type AddProductAction struct {
	Product  ProductRef
	Quantity int
}

func (a AddProductAction) Apply(c Cart) (Cart, error) { return c.Add(a.Product, a.Quantity) }
func (AddProductAction) Name() string                 { return "add_product" }

type RemoveProductAction struct {
	ID productdom.ID
}

func (a RemoveProductAction) Apply(c Cart) (Cart, error) { return c.Remove(a.ID), nil }
func (RemoveProductAction) Name() string                 { return "remove_product" }

type UpdateQuantityAction struct {
	ID       productdom.ID
	Quantity int
}

func (a UpdateQuantityAction) Apply(c Cart) (Cart, error) {
	return c.SetQuantity(a.ID, a.Quantity), nil
}
func (UpdateQuantityAction) Name() string { return "update_quantity" }

type ClearAction struct{}

func (ClearAction) Apply(Cart) (Cart, error) { return Empty(), nil }
func (ClearAction) Name() string             { return "clear" }
