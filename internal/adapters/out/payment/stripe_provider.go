// internal/adapters/out/payment/stripe_provider.go
package paymentout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	paymentdom "modaorganica/internal/domain/payment"
)

const defaultCurrency = "gtq"

// StripeProvider opens Stripe Checkout sessions.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(secretKey string, backends *stripe.Backends) (*StripeProvider, error) {
	key := strings.TrimSpace(secretKey)
	if key == "" {
		return nil, errors.New("stripe: secret key is empty")
	}
	api := &client.API{}
	api.Init(key, backends)
	return &StripeProvider{api: api}, nil
}

func (p *StripeProvider) CreateSession(ctx context.Context, in paymentdom.SessionParams) (paymentdom.Session, error) {
	if p == nil || p.api == nil {
		return paymentdom.Session{}, errors.New("stripe: provider is nil")
	}
	params := sessionParams(in)
	params.Context = ctx

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return paymentdom.Session{}, fmt.Errorf("stripe: create session: %w", err)
	}
	return toSession(s), nil
}

func (p *StripeProvider) GetSession(ctx context.Context, id string) (paymentdom.Session, error) {
	if p == nil || p.api == nil {
		return paymentdom.Session{}, errors.New("stripe: provider is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return paymentdom.Session{}, paymentdom.ErrSessionNotFound
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.Get(id, params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && (serr.Code == stripe.ErrorCodeResourceMissing || serr.HTTPStatusCode == 404) {
			return paymentdom.Session{}, paymentdom.ErrSessionNotFound
		}
		return paymentdom.Session{}, fmt.Errorf("stripe: get session: %w", err)
	}
	return toSession(s), nil
}

func sessionParams(in paymentdom.SessionParams) *stripe.CheckoutSessionParams {
	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(in.LineItems))
	for _, li := range in.LineItems {
		pd := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(li.Name),
		}
		if li.Description != "" {
			pd.Description = stripe.String(li.Description)
		}
		if li.ImageURL != "" {
			pd.Images = []*string{stripe.String(li.ImageURL)}
		}
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				ProductData: pd,
				UnitAmount:  stripe.Int64(li.UnitAmount.Cents()),
			},
			Quantity: stripe.Int64(int64(li.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		LineItems:                items,
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:               stripe.String(in.SuccessURL),
		CancelURL:                stripe.String(in.CancelURL),
		AllowPromotionCodes:      stripe.Bool(false),
		BillingAddressCollection: stripe.String("auto"),
		ClientReferenceID:        stripe.String(in.OrderID),
	}
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	params.AddMetadata("order_id", in.OrderID)
	params.AddMetadata("customer_email", in.CustomerEmail)
	params.AddMetadata("customer_name", in.CustomerName)
	return params
}

func toSession(s *stripe.CheckoutSession) paymentdom.Session {
	if s == nil {
		return paymentdom.Session{}
	}
	out := paymentdom.Session{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		OrderID:       s.Metadata["order_id"],
	}
	if out.OrderID == "" {
		out.OrderID = s.ClientReferenceID
	}
	return out
}
