package payment

import "context"

// SessionProvider opens and inspects hosted payment sessions (Stripe Checkout or the mock).
type SessionProvider interface {
	CreateSession(ctx context.Context, p SessionParams) (Session, error)
	// GetSession returns ErrSessionNotFound for unknown ids.
	GetSession(ctx context.Context, id string) (Session, error)
}
