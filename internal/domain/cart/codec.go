package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StorageKey is the fixed key the cart is persisted under.
const StorageKey = "cart"

// KeyFor scopes the storage key to a storefront session or user. An empty scope is StorageKey.
func KeyFor(scope string) string {
	if scope == "" {
		return StorageKey
	}
	return StorageKey + ":" + scope
}

// PersistenceError reports unreadable or unwritable cart state.
type PersistenceError struct {
	Key string
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cart: persistence %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Encode serializes c as {"items":[...],"subtotal":..,"total":..,"itemCount":..}.
func Encode(c Cart) ([]byte, error) {
	c = c.Normalize()
	return json.Marshal(c)
}

// Decode parses persisted state. Empty input is the empty cart; malformed input is an error
// the caller is expected to recover from with Empty().
func Decode(raw []byte) (Cart, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Empty(), nil
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return Empty(), err
	}
	return c.Normalize(), nil
}
