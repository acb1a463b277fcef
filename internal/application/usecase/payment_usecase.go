// internal/application/usecase/payment_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	common "modaorganica/internal/domain/common"
	courierdom "modaorganica/internal/domain/courier"
	orderdom "modaorganica/internal/domain/order"
	paymentdom "modaorganica/internal/domain/payment"
	productdom "modaorganica/internal/domain/product"
	shippingdom "modaorganica/internal/domain/shipping"
)

// PaymentConfig holds the URLs and courier sender the payment flow needs.
type PaymentConfig struct {
	FrontendURL string
	Currency    string
	Sender      courierdom.Party
}

// PaymentUsecase turns a checkout request into a pending order plus a hosted
// payment session, and confirms the order when the buyer comes back paid.
type PaymentUsecase struct {
	products productdom.Repository
	orders   orderdom.Repository
	provider paymentdom.SessionProvider
	rules    ShippingRules
	cfg      PaymentConfig

	mailer  OrderMailer
	courier courierdom.GuideService

	newID IDGenerator
	clock Clock
	log   *zap.Logger
}

func NewPaymentUsecase(
	products productdom.Repository,
	orders orderdom.Repository,
	provider paymentdom.SessionProvider,
	rules ShippingRules,
	cfg PaymentConfig,
	logger *zap.Logger,
) *PaymentUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rules == nil {
		rules = shippingdom.NewTable(shippingdom.DefaultRules())
	}
	if cfg.Currency == "" {
		cfg.Currency = common.CurrencyGTQ
	}
	return &PaymentUsecase{
		products: products,
		orders:   orders,
		provider: provider,
		rules:    rules,
		cfg:      cfg,
		newID:    NewUUID,
		clock:    systemClock{},
		log:      logger.Named("payment_uc"),
	}
}

// WithMailer enables order confirmation emails (optional).
func (u *PaymentUsecase) WithMailer(m OrderMailer) *PaymentUsecase {
	u.mailer = m
	return u
}

// WithCourier enables shipping guide creation for national orders (optional).
func (u *PaymentUsecase) WithCourier(c courierdom.GuideService) *PaymentUsecase {
	u.courier = c
	return u
}

// WithClock and WithIDGenerator are for tests.
func (u *PaymentUsecase) WithClock(c Clock) *PaymentUsecase {
	if c != nil {
		u.clock = c
	}
	return u
}

func (u *PaymentUsecase) WithIDGenerator(g IDGenerator) *PaymentUsecase {
	if g != nil {
		u.newID = g
	}
	return u
}

// ============================================================
// Create
// ============================================================

// CreateCheckoutSession prices the request, stores a pending order and opens the payment page.
// Known products are priced from the catalogue; client prices are only used for unknown ids.
// When the provider fails the order stays pending without a session.
func (u *PaymentUsecase) CreateCheckoutSession(ctx context.Context, req paymentdom.CheckoutSessionRequest) (paymentdom.CheckoutSessionResponse, error) {
	if err := req.Validate(); err != nil {
		return paymentdom.CheckoutSessionResponse{}, err
	}

	items, err := u.priceItems(ctx, req.Items)
	if err != nil {
		return paymentdom.CheckoutSessionResponse{}, err
	}

	quote := u.rules.Rules().Quote(req.Municipality())
	now := u.clock.Now().UTC()

	o, err := orderdom.New(u.newID(), orderdom.Order{
		UserID:        strings.TrimSpace(req.UserID),
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Shipping: orderdom.Shipping{
			Department:    strings.TrimSpace(req.ShippingAddress.Department),
			Municipality:  req.Municipality(),
			Address:       strings.TrimSpace(req.ShippingAddress.Address),
			DeliveryType:  deliveryTypeOrDefault(req.DeliveryType),
			PickupBranch:  strings.TrimSpace(req.PickupBranch),
			DeliveryNotes: strings.TrimSpace(req.DeliveryNotes),
			Lat:           req.DeliveryLat,
			Lng:           req.DeliveryLng,
		},
		ShippingMethod:  string(quote.Method),
		RequiresCourier: quote.RequiresCourier(),
		Items:           items,
		ShippingCost:    quote.Cost,
	}, now)
	if err != nil {
		return paymentdom.CheckoutSessionResponse{}, fmt.Errorf("%w: %v", paymentdom.ErrInvalidRequest, err)
	}

	if !req.Total.IsZero() && !req.Total.Equal(o.Total) {
		u.log.Info("client total differs from server total",
			zap.String("orderId", o.ID),
			zap.String("client", req.Total.String()),
			zap.String("server", o.Total.String()),
		)
	}

	if err := u.orders.Create(ctx, o); err != nil {
		return paymentdom.CheckoutSessionResponse{}, fmt.Errorf("payment: create order: %w", err)
	}

	sess, err := u.provider.CreateSession(ctx, u.sessionParams(o, quote))
	if err != nil {
		u.log.Error("payment session not created", zap.String("orderId", o.ID), zap.Error(err))
		return paymentdom.CheckoutSessionResponse{}, fmt.Errorf("payment: create session: %w", err)
	}

	o.AttachSession(sess.ID, u.clock.Now().UTC())
	if err := u.orders.Update(ctx, o); err != nil {
		return paymentdom.CheckoutSessionResponse{}, fmt.Errorf("payment: attach session: %w", err)
	}

	u.log.Info("checkout session created",
		zap.String("orderId", o.ID),
		zap.String("sessionId", sess.ID),
		zap.String("total", o.Total.String()),
		zap.String("method", o.ShippingMethod),
	)

	return paymentdom.CheckoutSessionResponse{
		CheckoutURL:     sess.URL,
		SessionID:       sess.ID,
		OrderID:         o.ID,
		RequiresCourier: o.RequiresCourier,
		ShippingMethod:  o.ShippingMethod,
		ShippingCost:    o.ShippingCost,
	}, nil
}

func (u *PaymentUsecase) priceItems(ctx context.Context, in []paymentdom.ItemInput) ([]orderdom.Item, error) {
	out := make([]orderdom.Item, 0, len(in))
	for _, it := range in {
		item := orderdom.Item{
			ProductID:   it.ID,
			ProductName: it.Name,
			Quantity:    it.Quantity,
			Price:       it.Price,
		}
		if u.products != nil {
			p, err := u.products.GetByID(ctx, it.ID)
			switch {
			case err == nil:
				item.ProductName = p.Name
				item.Price = p.Price
			case errors.Is(err, productdom.ErrNotFound):
				u.log.Debug("item not in catalogue, using client price", zap.String("productId", it.ID.String()))
			default:
				return nil, fmt.Errorf("payment: price item %q: %w", it.ID, err)
			}
		}
		if strings.TrimSpace(item.ProductName) == "" {
			return nil, fmt.Errorf("%w: items.name", paymentdom.ErrInvalidRequest)
		}
		out = append(out, item)
	}
	return out, nil
}

func (u *PaymentUsecase) sessionParams(o orderdom.Order, q shippingdom.Quote) paymentdom.SessionParams {
	lines := make([]paymentdom.LineItem, 0, len(o.Items)+1)
	for _, it := range o.Items {
		lines = append(lines, paymentdom.LineItem{
			Name:       it.ProductName,
			UnitAmount: it.Price,
			Quantity:   it.Quantity,
		})
	}
	if o.ShippingCost.IsPositive() {
		desc := "Entrega local"
		if q.RequiresCourier() {
			desc = "Envío nacional (" + q.Provider + ")"
		}
		lines = append(lines, paymentdom.LineItem{
			Name:        "Envío",
			Description: desc,
			UnitAmount:  o.ShippingCost,
			Quantity:    1,
		})
	}
	return paymentdom.SessionParams{
		OrderID:       o.ID,
		CustomerEmail: o.CustomerEmail,
		CustomerName:  o.CustomerName,
		Currency:      u.cfg.Currency,
		LineItems:     lines,
		SuccessURL:    paymentdom.SuccessURL(u.cfg.FrontendURL),
		CancelURL:     paymentdom.CancelURL(u.cfg.FrontendURL),
	}
}

func deliveryTypeOrDefault(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return paymentdom.DeliveryHome
}

// ============================================================
// Confirm
// ============================================================

// ConfirmSession marks the order of a paid session as paid, sends the confirmation
// email and, for national destinations, requests the courier guide.
// Calling it again for the same session is a no-op that returns the stored order.
func (u *PaymentUsecase) ConfirmSession(ctx context.Context, sessionID string) (orderdom.Order, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return orderdom.Order{}, paymentdom.ErrSessionNotFound
	}

	sess, err := u.provider.GetSession(ctx, sid)
	if err != nil {
		return orderdom.Order{}, err
	}
	if !sess.Paid() {
		return orderdom.Order{}, paymentdom.ErrNotPaid
	}

	o, err := u.orders.GetBySessionID(ctx, sid)
	if errors.Is(err, orderdom.ErrNotFound) && sess.OrderID != "" {
		o, err = u.orders.GetByID(ctx, sess.OrderID)
	}
	if err != nil {
		return orderdom.Order{}, err
	}

	changed, err := o.MarkPaid(u.clock.Now().UTC())
	if err != nil {
		return o, err
	}
	if changed {
		if err := u.orders.Update(ctx, o); err != nil {
			return o, fmt.Errorf("payment: mark paid: %w", err)
		}
		u.log.Info("order paid", zap.String("orderId", o.ID), zap.String("sessionId", sid))
		u.sendConfirmation(ctx, o)
	}

	if o.RequiresCourier && o.TrackingNumber == "" && u.courier != nil {
		o = u.requestGuide(ctx, o)
	}
	return o, nil
}

func (u *PaymentUsecase) sendConfirmation(ctx context.Context, o orderdom.Order) {
	if u.mailer == nil {
		return
	}
	if err := u.mailer.SendOrderConfirmation(ctx, o); err != nil {
		u.log.Warn("confirmation email not sent", zap.String("orderId", o.ID), zap.Error(err))
	}
}

// requestGuide is best-effort: a failed guide leaves the order paid for manual follow-up.
func (u *PaymentUsecase) requestGuide(ctx context.Context, o orderdom.Order) orderdom.Order {
	guide, err := u.courier.CreateGuide(ctx, courierdom.GuideRequest{
		Sender: u.cfg.Sender,
		Recipient: courierdom.Party{
			Name:    o.CustomerName,
			Phone:   o.CustomerPhone,
			Address: o.Shipping.Address,
			City:    strings.TrimSpace(o.Shipping.Municipality + ", " + o.Shipping.Department),
		},
		OrderID:       o.ID,
		PackageType:   "paquete",
		WeightLb:      1,
		DeclaredValue: o.Subtotal,
		Notes:         o.Shipping.DeliveryNotes,
		DeliveryType:  o.Shipping.DeliveryType,
		PickupBranch:  o.Shipping.PickupBranch,
	})
	if err != nil {
		u.log.Warn("courier guide not created", zap.String("orderId", o.ID), zap.Error(err))
		return o
	}

	updated := o
	if err := updated.AttachGuide(guide.TrackingNumber, guide.GuideURL, u.clock.Now().UTC()); err != nil {
		u.log.Warn("courier guide not attached", zap.String("orderId", o.ID), zap.Error(err))
		return o
	}
	if err := u.orders.Update(ctx, updated); err != nil {
		u.log.Warn("courier guide not saved", zap.String("orderId", o.ID), zap.Error(err))
		return o
	}
	u.log.Info("courier guide created", zap.String("orderId", o.ID), zap.String("tracking", guide.TrackingNumber))
	return updated
}

// ============================================================
// Queries
// ============================================================

func (u *PaymentUsecase) GetOrder(ctx context.Context, id string) (orderdom.Order, error) {
	return u.orders.GetByID(ctx, strings.TrimSpace(id))
}

// Tracking asks the courier for the status of an order's shipment.
func (u *PaymentUsecase) Tracking(ctx context.Context, orderID string) (courierdom.TrackingInfo, error) {
	o, err := u.orders.GetByID(ctx, strings.TrimSpace(orderID))
	if err != nil {
		return courierdom.TrackingInfo{}, err
	}
	if o.TrackingNumber == "" || u.courier == nil {
		return courierdom.TrackingInfo{}, fmt.Errorf("%w: no tracking for order %s", orderdom.ErrInvalidStatus, o.ID)
	}
	return u.courier.Tracking(ctx, o.TrackingNumber)
}
