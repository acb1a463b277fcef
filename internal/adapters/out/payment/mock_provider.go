// internal/adapters/out/payment/mock_provider.go
package paymentout

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	paymentdom "modaorganica/internal/domain/payment"
)

// MockProvider simulates the hosted payment page for local runs.
// Every session it opens reports paid; the checkout URL points straight at the success route.
type MockProvider struct {
	mu       sync.Mutex
	sessions map[string]paymentdom.Session
}

func NewMockProvider() *MockProvider {
	return &MockProvider{sessions: map[string]paymentdom.Session{}}
}

func (p *MockProvider) CreateSession(_ context.Context, in paymentdom.SessionParams) (paymentdom.Session, error) {
	id := paymentdom.MockSessionPrefix + uuid.NewString()
	s := paymentdom.Session{
		ID:            id,
		URL:           strings.ReplaceAll(in.SuccessURL, "{CHECKOUT_SESSION_ID}", id),
		PaymentStatus: paymentdom.PaymentStatusPaid,
		OrderID:       in.OrderID,
	}

	p.mu.Lock()
	p.sessions[id] = s
	p.mu.Unlock()
	return s, nil
}

// GetSession knows its own sessions. Unknown ids with the test prefix are
// reported paid without an order id so a restarted server still confirms them.
func (p *MockProvider) GetSession(_ context.Context, id string) (paymentdom.Session, error) {
	id = strings.TrimSpace(id)

	p.mu.Lock()
	s, ok := p.sessions[id]
	p.mu.Unlock()
	if ok {
		return s, nil
	}
	if strings.HasPrefix(id, paymentdom.MockSessionPrefix) {
		return paymentdom.Session{ID: id, PaymentStatus: paymentdom.PaymentStatusPaid}, nil
	}
	return paymentdom.Session{}, paymentdom.ErrSessionNotFound
}
