// internal/application/usecase/ports.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	orderdom "modaorganica/internal/domain/order"
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a plain func to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// IDGenerator issues new entity ids.
type IDGenerator func() string

// NewUUID is the default IDGenerator.
func NewUUID() string { return uuid.NewString() }

// ImageResolver turns a stored image path into a URL the browser can load.
type ImageResolver interface {
	ResolveImageURL(ctx context.Context, path string) (string, error)
}

// OrderMailer sends the buyer's order confirmation.
type OrderMailer interface {
	SendOrderConfirmation(ctx context.Context, o orderdom.Order) error
}
