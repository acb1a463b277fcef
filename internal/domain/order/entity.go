package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	common "modaorganica/internal/domain/common"
	productdom "modaorganica/internal/domain/product"
)

var (
	ErrNotFound      = errors.New("order: not found")
	ErrConflict      = errors.New("order: already exists")
	ErrInvalidOrder  = errors.New("order: invalid")
	ErrInvalidStatus = errors.New("order: invalid status transition")
	ErrUnknownStatus = errors.New("order: unknown status")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusPaid       Status = "paid"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusPaid, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// ParseStatus accepts any case and surrounding spaces.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// IsPaid is true once the payment has been confirmed, whatever happened after.
func (s Status) IsPaid() bool {
	return s == StatusPaid || s == StatusProcessing || s == StatusShipped || s == StatusDelivered
}

// CountsAsRevenue is true for orders that have left the store.
func (s Status) CountsAsRevenue() bool {
	return s == StatusShipped || s == StatusDelivered
}

// manual moves allowed from the admin panel; delivered and cancelled are final.
var transitions = map[Status][]Status{
	StatusPending:    {StatusPaid, StatusCancelled},
	StatusPaid:       {StatusProcessing, StatusShipped, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// CanMoveTo reports whether an admin may set next on an order in s.
func (s Status) CanMoveTo(next Status) bool {
	if s == next {
		return true
	}
	for _, st := range transitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

// Item is a price/name snapshot taken at purchase time.
type Item struct {
	ProductID   productdom.ID `json:"product_id"`
	ProductName string        `json:"product_name"`
	Quantity    int           `json:"quantity"`
	Price       common.Money  `json:"price"`
}

func (it Item) LineTotal() common.Money { return it.Price.Mul(it.Quantity) }

// Shipping is the delivery snapshot.
type Shipping struct {
	Department    string   `json:"department"`
	Municipality  string   `json:"municipality"`
	Address       string   `json:"address"`
	DeliveryType  string   `json:"delivery_type"`
	PickupBranch  string   `json:"pickup_branch,omitempty"`
	DeliveryNotes string   `json:"delivery_notes,omitempty"`
	Lat           *float64 `json:"delivery_lat,omitempty"`
	Lng           *float64 `json:"delivery_lng,omitempty"`
}

type Order struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	UserID string `json:"user_id,omitempty"`

	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`

	Shipping        Shipping `json:"shipping"`
	ShippingMethod  string   `json:"shipping_method"`
	RequiresCourier bool     `json:"requires_courier"`

	Items        []Item       `json:"items"`
	Subtotal     common.Money `json:"subtotal"`
	ShippingCost common.Money `json:"shipping_cost"`
	Total        common.Money `json:"total"`

	PaymentSessionID string `json:"payment_session_id,omitempty"`
	TrackingNumber   string `json:"tracking_number,omitempty"`
	GuideURL         string `json:"guide_url,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// New builds a pending order and computes its totals from items.
func New(id string, o Order, now time.Time) (Order, error) {
	o.ID = strings.TrimSpace(id)
	o.Status = StatusPending
	o.CustomerEmail = strings.TrimSpace(o.CustomerEmail)
	o.CustomerName = strings.TrimSpace(o.CustomerName)
	o.CustomerPhone = strings.TrimSpace(o.CustomerPhone)
	o.CreatedAt = now
	o.UpdatedAt = now
	o.Recalculate()
	if err := o.Validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Recalculate sets Subtotal from the items and Total = Subtotal + ShippingCost.
func (o *Order) Recalculate() {
	sub := common.Zero
	for _, it := range o.Items {
		sub = sub.Add(it.LineTotal())
	}
	o.Subtotal = sub
	o.Total = sub.Add(o.ShippingCost)
}

func (o Order) Validate() error {
	if o.ID == "" || o.CustomerEmail == "" || o.CustomerName == "" {
		return ErrInvalidOrder
	}
	if strings.TrimSpace(o.Shipping.Municipality) == "" {
		return ErrInvalidOrder
	}
	if len(o.Items) == 0 {
		return ErrInvalidOrder
	}
	for _, it := range o.Items {
		if it.ProductID.IsZero() || strings.TrimSpace(it.ProductName) == "" || it.Quantity <= 0 || it.Price.IsNegative() {
			return ErrInvalidOrder
		}
	}
	if o.ShippingCost.IsNegative() || o.Total.IsNegative() {
		return ErrInvalidOrder
	}
	return nil
}

// AttachSession records the payment session id.
func (o *Order) AttachSession(sessionID string, now time.Time) {
	o.PaymentSessionID = strings.TrimSpace(sessionID)
	o.UpdatedAt = now
}

// MarkPaid moves a pending order to paid. It reports false when the order was already paid.
func (o *Order) MarkPaid(now time.Time) (bool, error) {
	if o.Status.IsPaid() {
		return false, nil
	}
	if o.Status != StatusPending {
		return false, ErrInvalidStatus
	}
	o.Status = StatusPaid
	o.PaidAt = &now
	o.UpdatedAt = now
	return true, nil
}

// AttachGuide stores the courier guide and moves a paid order to processing.
func (o *Order) AttachGuide(trackingNumber, guideURL string, now time.Time) error {
	if o.Status != StatusPaid && o.Status != StatusProcessing {
		return ErrInvalidStatus
	}
	o.TrackingNumber = strings.TrimSpace(trackingNumber)
	o.GuideURL = strings.TrimSpace(guideURL)
	o.Status = StatusProcessing
	o.UpdatedAt = now
	return nil
}

// SetStatus applies a manual status change. Setting the current status is a no-op.
func (o *Order) SetStatus(next Status, now time.Time) error {
	if !o.Status.CanMoveTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, o.Status, next)
	}
	if o.Status == next {
		return nil
	}
	if next == StatusPaid && o.PaidAt == nil {
		o.PaidAt = &now
	}
	o.Status = next
	o.UpdatedAt = now
	return nil
}

// HasLocation reports whether the delivery point was pinned on the map.
func (o Order) HasLocation() bool {
	return o.Shipping.Lat != nil && o.Shipping.Lng != nil
}

// Redacted drops the buyer's contact data and exact destination.
// It is what anonymous callers see when they look an order up by id.
func (o Order) Redacted() Order {
	out := o
	out.UserID = ""
	out.CustomerEmail = ""
	out.CustomerName = ""
	out.CustomerPhone = ""
	out.PaymentSessionID = ""
	out.Shipping.Address = ""
	out.Shipping.DeliveryNotes = ""
	out.Shipping.Lat = nil
	out.Shipping.Lng = nil
	out.Items = append([]Item(nil), o.Items...)
	return out
}
