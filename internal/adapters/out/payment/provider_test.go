package paymentout

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"

	common "modaorganica/internal/domain/common"
	paymentdom "modaorganica/internal/domain/payment"
)

func params() paymentdom.SessionParams {
	return paymentdom.SessionParams{
		OrderID:       "ord-1",
		CustomerEmail: "ana@example.com",
		CustomerName:  "Ana",
		LineItems: []paymentdom.LineItem{
			{Name: "Collar", UnitAmount: common.MustParseMoney("149.99"), Quantity: 2, ImageURL: "https://cdn.example/c.jpg"},
			{Name: "Envío a Cobán", Description: "Costo de envío", UnitAmount: common.MustParseMoney("36"), Quantity: 1},
		},
		SuccessURL: paymentdom.SuccessURL("http://localhost:5173/"),
		CancelURL:  paymentdom.CancelURL("http://localhost:5173/"),
	}
}

func TestSessionParams(t *testing.T) {
	p := sessionParams(params())

	assert.Equal(t, string(stripe.CheckoutSessionModePayment), *p.Mode)
	assert.Equal(t, "http://localhost:5173/checkout/success?session_id={CHECKOUT_SESSION_ID}", *p.SuccessURL)
	assert.Equal(t, "http://localhost:5173/checkout/cancel", *p.CancelURL)
	assert.Equal(t, "ord-1", p.Metadata["order_id"])
	assert.Equal(t, "ana@example.com", *p.CustomerEmail)

	require.Len(t, p.LineItems, 2)
	first := p.LineItems[0]
	assert.Equal(t, "gtq", *first.PriceData.Currency)
	assert.Equal(t, int64(14999), *first.PriceData.UnitAmount)
	assert.Equal(t, int64(2), *first.Quantity)
	require.Len(t, first.PriceData.ProductData.Images, 1)

	ship := p.LineItems[1]
	assert.Equal(t, int64(3600), *ship.PriceData.UnitAmount)
	assert.Nil(t, ship.PriceData.ProductData.Images)
}

func TestToSession(t *testing.T) {
	s := toSession(&stripe.CheckoutSession{
		ID:                "cs_live_1",
		URL:               "https://checkout.stripe.com/pay/cs_live_1",
		PaymentStatus:     stripe.CheckoutSessionPaymentStatusPaid,
		ClientReferenceID: "ord-9",
	})
	assert.True(t, s.Paid())
	assert.Equal(t, "ord-9", s.OrderID)

	assert.Equal(t, paymentdom.Session{}, toSession(nil))
}

func TestNewStripeProvider_RequiresKey(t *testing.T) {
	_, err := NewStripeProvider("  ", nil)
	assert.Error(t, err)
}

func TestMockProvider(t *testing.T) {
	ctx := context.Background()
	p := NewMockProvider()

	s, err := p.CreateSession(ctx, params())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s.ID, paymentdom.MockSessionPrefix))
	assert.Equal(t, "http://localhost:5173/checkout/success?session_id="+s.ID, s.URL)

	got, err := p.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.Paid())
	assert.Equal(t, "ord-1", got.OrderID)

	orphan, err := p.GetSession(ctx, paymentdom.MockSessionPrefix+"restart")
	require.NoError(t, err)
	assert.True(t, orphan.Paid())
	assert.Empty(t, orphan.OrderID)

	_, err = p.GetSession(ctx, "cs_live_unknown")
	assert.ErrorIs(t, err, paymentdom.ErrSessionNotFound)
}
