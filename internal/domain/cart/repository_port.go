package cart

import "context"

// StateRepository is durable key/value storage for serialized carts.
// Load returns (nil, nil) when the key is absent.
type StateRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, raw []byte) error
	Delete(ctx context.Context, key string) error
}
