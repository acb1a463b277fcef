// internal/application/usecase/checkout_coordinator.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	cartdom "modaorganica/internal/domain/cart"
	checkoutdom "modaorganica/internal/domain/checkout"
	common "modaorganica/internal/domain/common"
	locationdom "modaorganica/internal/domain/location"
	paymentdom "modaorganica/internal/domain/payment"
	shippingdom "modaorganica/internal/domain/shipping"
)

// CheckoutGateway is the outbound port to the backend's create-checkout-session API.
// Implementations return *checkout.NetworkError for transport failures and
// *checkout.BackendError for non-success answers.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req paymentdom.CheckoutSessionRequest) (paymentdom.CheckoutSessionResponse, error)
}

// ShippingRules is the live rule source (shipping.Table).
type ShippingRules interface {
	Rules() shippingdom.Rules
}

// DefaultCheckoutTimeout bounds one create-checkout-session call.
const DefaultCheckoutTimeout = 15 * time.Second

// Totals is the order summary shown next to the checkout form.
type Totals struct {
	Subtotal     common.Money       `json:"subtotal"`
	Shipping     common.Money       `json:"shipping"`
	Total        common.Money       `json:"total"`
	Method       shippingdom.Method `json:"method"`
	Provider     string             `json:"provider,omitempty"`
	Local        bool               `json:"local"`
	Municipality string             `json:"municipality"`
	ItemCount    int                `json:"itemCount"`
}

// Confirmation is returned when the payment page sends the buyer back with a session id.
type Confirmation struct {
	SessionID string `json:"session_id"`
	OrderID   string `json:"order_id,omitempty"`
}

// CheckoutCoordinator drives one buyer's checkout attempt over a CartStore.
//
// States: Idle -> Validating -> Submitting -> AwaitingPayment.
// The cart is only cleared by HandleSuccess.
type CheckoutCoordinator struct {
	store   *CartStore
	gateway CheckoutGateway
	rules   ShippingRules
	locs    *locationdom.Catalogue
	timeout time.Duration
	log     *zap.Logger

	mu           sync.Mutex
	state        checkoutdom.State
	cart         cartdom.Cart
	department   string
	municipality string
	last         *paymentdom.CheckoutSessionResponse

	watchers map[int]func(Totals)
	nextID   int

	unsubscribe func()
}

// NewCheckoutCoordinator subscribes to store so totals follow every cart change.
// rules may be nil (default rates); locs may be nil (free-text locations).
func NewCheckoutCoordinator(store *CartStore, gateway CheckoutGateway, rules ShippingRules, locs *locationdom.Catalogue, logger *zap.Logger) *CheckoutCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rules == nil {
		rules = shippingdom.NewTable(shippingdom.DefaultRules())
	}
	c := &CheckoutCoordinator{
		store:    store,
		gateway:  gateway,
		rules:    rules,
		locs:     locs,
		timeout:  DefaultCheckoutTimeout,
		log:      logger.Named("checkout_coordinator"),
		state:    checkoutdom.StateIdle,
		cart:     cartdom.Empty(),
		watchers: map[int]func(Totals){},
	}
	c.unsubscribe = store.Subscribe(c.onCart)
	return c
}

// WithTimeout overrides the per-request timeout.
func (c *CheckoutCoordinator) WithTimeout(d time.Duration) *CheckoutCoordinator {
	if d > 0 {
		c.timeout = d
	}
	return c
}

// Close detaches from the cart store.
func (c *CheckoutCoordinator) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

func (c *CheckoutCoordinator) onCart(cart cartdom.Cart) {
	c.mu.Lock()
	c.cart = cart
	t, watchers := c.totalsLocked(), c.watchersLocked()
	c.mu.Unlock()
	notifyTotals(watchers, t)
}

// State is the current checkout phase.
func (c *CheckoutCoordinator) State() checkoutdom.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastSession is the most recent successful create-checkout-session answer.
func (c *CheckoutCoordinator) LastSession() (paymentdom.CheckoutSessionResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return paymentdom.CheckoutSessionResponse{}, false
	}
	return *c.last, true
}

// SetMunicipality records a free-text municipality and recomputes totals.
func (c *CheckoutCoordinator) SetMunicipality(m string) Totals {
	return c.SetLocation("", m)
}

// SetLocation records the department/municipality selection and recomputes totals.
// Either part may be a catalogue id or a display name.
func (c *CheckoutCoordinator) SetLocation(dept, municipality string) Totals {
	c.mu.Lock()
	c.department = strings.TrimSpace(dept)
	c.municipality = strings.TrimSpace(municipality)
	t, watchers := c.totalsLocked(), c.watchersLocked()
	c.mu.Unlock()
	notifyTotals(watchers, t)
	return t
}

// Totals computes the summary from the current cart, location and live rules.
func (c *CheckoutCoordinator) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalsLocked()
}

// WatchTotals calls w now and after every cart or location change.
func (c *CheckoutCoordinator) WatchTotals(w func(Totals)) func() {
	if w == nil {
		return func() {}
	}
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = w
	t := c.totalsLocked()
	c.mu.Unlock()
	w(t)

	return func() {
		c.mu.Lock()
		delete(c.watchers, id)
		c.mu.Unlock()
	}
}

func (c *CheckoutCoordinator) totalsLocked() Totals {
	name := c.shippingName(c.department, c.municipality)
	q := c.rules.Rules().Quote(name)
	return Totals{
		Subtotal:     c.cart.Subtotal,
		Shipping:     q.Cost,
		Total:        c.cart.Subtotal.Add(q.Cost),
		Method:       q.Method,
		Provider:     q.Provider,
		Local:        q.Local,
		Municipality: q.Municipality,
		ItemCount:    c.cart.ItemCount,
	}
}

func (c *CheckoutCoordinator) watchersLocked() []func(Totals) {
	out := make([]func(Totals), 0, len(c.watchers))
	for i := 0; i < c.nextID; i++ {
		if w, ok := c.watchers[i]; ok {
			out = append(out, w)
		}
	}
	return out
}

func notifyTotals(ws []func(Totals), t Totals) {
	for _, w := range ws {
		w(t)
	}
}

// shippingName maps catalogue ids ("GT-13-02") to the municipality name the rule table matches.
func (c *CheckoutCoordinator) shippingName(dept, municipality string) string {
	if c.locs == nil || dept == "" {
		return municipality
	}
	if _, m, err := c.locs.Resolve(dept, municipality); err == nil {
		return m.Name
	}
	return municipality
}

func (c *CheckoutCoordinator) setState(s checkoutdom.State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Submit validates form against the current cart and asks the backend for a payment session.
// On success the coordinator waits for the buyer to come back through HandleSuccess or HandleCancel.
// The cart is never modified here.
func (c *CheckoutCoordinator) Submit(ctx context.Context, form checkoutdom.Form) (paymentdom.CheckoutSessionResponse, error) {
	c.mu.Lock()
	if c.state.Busy() {
		c.mu.Unlock()
		return paymentdom.CheckoutSessionResponse{}, checkoutdom.ErrSubmitInProgress
	}
	c.state = checkoutdom.StateValidating
	c.mu.Unlock()

	snapshot := c.store.GetCart()
	if snapshot.IsEmpty() {
		c.setState(checkoutdom.StateIdle)
		return paymentdom.CheckoutSessionResponse{}, checkoutdom.ErrEmptyCart
	}

	f := form.Normalized()
	var resolver checkoutdom.LocationResolver
	if c.locs != nil {
		resolver = c.locs
	}
	if err := f.Validate(resolver); err != nil {
		c.setState(checkoutdom.StateIdle)
		return paymentdom.CheckoutSessionResponse{}, err
	}

	totals := c.SetLocation(f.Department, f.Municipality)
	req := c.buildRequest(f, snapshot, totals)

	c.setState(checkoutdom.StateSubmitting)
	if c.gateway == nil {
		c.setState(checkoutdom.StateIdle)
		return paymentdom.CheckoutSessionResponse{}, &checkoutdom.NetworkError{Op: "create_checkout_session", Err: errors.New("no gateway configured")}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.gateway.CreateCheckoutSession(callCtx, req)
	if err != nil {
		c.setState(checkoutdom.StateIdle)
		err = classifyGatewayError(err)
		c.log.Warn("checkout session failed", zap.Error(err))
		return paymentdom.CheckoutSessionResponse{}, err
	}

	c.mu.Lock()
	c.state = checkoutdom.StateAwaitingPayment
	c.last = &resp
	c.mu.Unlock()

	c.log.Info("checkout session created",
		zap.String("sessionId", resp.SessionID),
		zap.String("orderId", resp.OrderID),
	)
	return resp, nil
}

func classifyGatewayError(err error) error {
	var ne *checkoutdom.NetworkError
	var be *checkoutdom.BackendError
	switch {
	case errors.As(err, &ne), errors.As(err, &be):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &checkoutdom.NetworkError{Op: "create_checkout_session", Err: err}
	default:
		return &checkoutdom.BackendError{Message: err.Error()}
	}
}

func (c *CheckoutCoordinator) buildRequest(f checkoutdom.Form, cart cartdom.Cart, t Totals) paymentdom.CheckoutSessionRequest {
	items := make([]paymentdom.ItemInput, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, paymentdom.ItemInput{
			ID:       it.ID,
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
			ImageURL: it.ImageURL,
		})
	}

	dept, mun := f.Department, f.Municipality
	if c.locs != nil {
		if d, m, err := c.locs.Resolve(f.Department, f.Municipality); err == nil {
			dept, mun = d.Name, m.Name
		}
	}

	req := paymentdom.CheckoutSessionRequest{
		CustomerEmail:        f.Email,
		CustomerName:         f.FullName,
		CustomerPhone:        f.Phone,
		Items:                items,
		Subtotal:             cart.Subtotal,
		ShippingCost:         t.Shipping,
		Total:                t.Total,
		ShippingMunicipality: mun,
		ShippingAddress: paymentdom.AddressInput{
			Department:   dept,
			Municipality: mun,
			Address:      f.Address,
		},
		DeliveryType:  string(f.DeliveryType),
		DeliveryNotes: f.DeliveryNotes,
	}
	if f.DeliveryType == checkoutdom.DeliveryPickup {
		req.PickupBranch = f.PickupBranch
	}
	return req
}

// HandleSuccess clears the cart after the payment page reports success.
// A missing session id is a client error and leaves the cart alone.
func (c *CheckoutCoordinator) HandleSuccess(ctx context.Context, sessionID string) (Confirmation, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return Confirmation{}, checkoutdom.ErrMissingSessionID
	}

	c.store.Clear(ctx)

	c.mu.Lock()
	conf := Confirmation{SessionID: sid}
	if c.last != nil && c.last.SessionID == sid {
		conf.OrderID = c.last.OrderID
	}
	c.state = checkoutdom.StateIdle
	c.last = nil
	c.mu.Unlock()

	c.log.Info("checkout completed", zap.String("sessionId", sid), zap.String("orderId", conf.OrderID))
	return conf, nil
}

// HandleCancel returns to Idle and keeps the cart for another attempt.
func (c *CheckoutCoordinator) HandleCancel(ctx context.Context) cartdom.Cart {
	c.setState(checkoutdom.StateIdle)
	c.log.Info("checkout cancelled")
	return c.store.GetCart()
}

// UserMessage is the banner text for err.
func (c *CheckoutCoordinator) UserMessage(err error) string {
	return checkoutdom.UserMessage(err)
}
