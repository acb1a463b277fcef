package product

import "context"

// Repository is the catalogue persistence port.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	// GetByID returns ErrNotFound when the product does not exist.
	GetByID(ctx context.Context, id ID) (Product, error)
	Upsert(ctx context.Context, p Product) error
}
