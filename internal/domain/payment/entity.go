package payment

import (
	"errors"
	"strings"

	common "modaorganica/internal/domain/common"
	productdom "modaorganica/internal/domain/product"
)

var (
	ErrSessionNotFound = errors.New("payment: session not found")
	ErrNotPaid         = errors.New("payment: session is not paid")
	ErrInvalidRequest  = errors.New("payment: invalid request")
)

// MockSessionPrefix marks sessions created in test/mock mode.
const MockSessionPrefix = "cs_test_"

const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// ItemInput is one cart line sent to create-checkout-session.
type ItemInput struct {
	ID       productdom.ID `json:"id" validate:"required"`
	Name     string        `json:"name"`
	Quantity int           `json:"quantity" validate:"gt=0"`
	Price    common.Money  `json:"price"`
	ImageURL string        `json:"image_url,omitempty"`
}

type AddressInput struct {
	Department   string `json:"department"`
	Municipality string `json:"municipality"`
	Address      string `json:"address"`
}

// CheckoutSessionRequest is the body of POST /api/v1/payments/create-checkout-session.
type CheckoutSessionRequest struct {
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerPhone string `json:"customer_phone"`

	Items []ItemInput `json:"items" validate:"required,min=1,dive"`

	Subtotal     common.Money `json:"subtotal"`
	ShippingCost common.Money `json:"shipping_cost"`
	Total        common.Money `json:"total"`

	ShippingMunicipality string       `json:"shipping_municipality"`
	ShippingAddress      AddressInput `json:"shipping_address"`

	DeliveryType  string   `json:"delivery_type,omitempty" validate:"omitempty,oneof=home_delivery pickup_at_branch"`
	PickupBranch  string   `json:"pickup_branch,omitempty"`
	DeliveryNotes string   `json:"delivery_notes,omitempty"`
	DeliveryLat   *float64 `json:"delivery_lat,omitempty"`
	DeliveryLng   *float64 `json:"delivery_lng,omitempty"`

	// UserID is the verified buyer uid; the transport fills it, never the body.
	UserID string `json:"-"`
}

// Municipality prefers the structured address and falls back to shipping_municipality.
func (r CheckoutSessionRequest) Municipality() string {
	if m := strings.TrimSpace(r.ShippingAddress.Municipality); m != "" {
		return m
	}
	return strings.TrimSpace(r.ShippingMunicipality)
}

// CheckoutSessionResponse is the create-checkout-session answer.
type CheckoutSessionResponse struct {
	CheckoutURL     string       `json:"checkout_url"`
	SessionID       string       `json:"session_id"`
	OrderID         string       `json:"order_id"`
	RequiresCourier bool         `json:"requires_courier"`
	ShippingMethod  string       `json:"shipping_method,omitempty"`
	ShippingCost    common.Money `json:"shipping_cost"`
}

// LineItem is what the payment page charges for.
type LineItem struct {
	Name        string
	Description string
	UnitAmount  common.Money
	Quantity    int
	ImageURL    string
}

// SessionParams describes a hosted payment page to open.
type SessionParams struct {
	OrderID       string
	CustomerEmail string
	CustomerName  string
	Currency      string
	LineItems     []LineItem
	SuccessURL    string
	CancelURL     string
}

// Session is the provider's handle for one payment attempt.
type Session struct {
	ID            string
	URL           string
	PaymentStatus string
	OrderID       string
}

func (s Session) Paid() bool { return s.PaymentStatus == PaymentStatusPaid }

// SuccessURL is the return route; {CHECKOUT_SESSION_ID} is filled in by the provider.
func SuccessURL(frontendURL string) string {
	return strings.TrimRight(frontendURL, "/") + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
}

func CancelURL(frontendURL string) string {
	return strings.TrimRight(frontendURL, "/") + "/checkout/cancel"
}
