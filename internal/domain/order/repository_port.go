package order

import "context"

type Repository interface {
	// Create returns ErrConflict when the id is taken.
	Create(ctx context.Context, o Order) error
	// Update overwrites an existing order; ErrNotFound when absent.
	Update(ctx context.Context, o Order) error
	GetByID(ctx context.Context, id string) (Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (Order, error)

	// List returns newest first, plus the number of orders matching f before paging.
	// f is already normalized.
	List(ctx context.Context, f ListFilter) ([]Order, int64, error)
	Stats(ctx context.Context) (Stats, error)
}
