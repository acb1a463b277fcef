package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	common "modaorganica/internal/domain/common"
	courierdom "modaorganica/internal/domain/courier"
	orderdom "modaorganica/internal/domain/order"
	paymentdom "modaorganica/internal/domain/payment"
	productdom "modaorganica/internal/domain/product"
)

type memStateRepo struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   int
	loadErr error
	saveErr error
}

func newMemStateRepo() *memStateRepo { return &memStateRepo{data: map[string][]byte{}} }

func (r *memStateRepo) Load(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	raw, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), raw...), nil
}

func (r *memStateRepo) Save(_ context.Context, key string, raw []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.data[key] = append([]byte(nil), raw...)
	return nil
}

func (r *memStateRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func (r *memStateRepo) raw(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.data[key])
}

type fakeGateway struct {
	mu    sync.Mutex
	calls []paymentdom.CheckoutSessionRequest
	resp  paymentdom.CheckoutSessionResponse
	err   error
	block chan struct{}
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req paymentdom.CheckoutSessionRequest) (paymentdom.CheckoutSessionResponse, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	block := g.block
	g.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return paymentdom.CheckoutSessionResponse{}, ctx.Err()
		}
	}
	return g.resp, g.err
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type memProducts struct {
	items map[productdom.ID]productdom.Product
	err   error
}

func newMemProducts(ps ...productdom.Product) *memProducts {
	m := &memProducts{items: map[productdom.ID]productdom.Product{}}
	for _, p := range ps {
		m.items[p.ID] = p
	}
	return m
}

func (m *memProducts) List(context.Context) ([]productdom.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]productdom.Product, 0, len(m.items))
	for _, id := range []productdom.ID{"1", "2", "3", "4"} {
		if p, ok := m.items[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) GetByID(_ context.Context, id productdom.ID) (productdom.Product, error) {
	if m.err != nil {
		return productdom.Product{}, m.err
	}
	p, ok := m.items[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (m *memProducts) Upsert(_ context.Context, p productdom.Product) error {
	m.items[p.ID] = p
	return nil
}

type memOrders struct {
	mu   sync.Mutex
	byID map[string]orderdom.Order
}

func newMemOrders() *memOrders { return &memOrders{byID: map[string]orderdom.Order{}} }

func (m *memOrders) Create(_ context.Context, o orderdom.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[o.ID]; ok {
		return orderdom.ErrConflict
	}
	m.byID[o.ID] = o
	return nil
}

func (m *memOrders) Update(_ context.Context, o orderdom.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[o.ID]; !ok {
		return orderdom.ErrNotFound
	}
	m.byID[o.ID] = o
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id string) (orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return o, nil
}

func (m *memOrders) GetBySessionID(_ context.Context, sid string) (orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.byID {
		if o.PaymentSessionID == sid {
			return o, nil
		}
	}
	return orderdom.Order{}, orderdom.ErrNotFound
}

func (m *memOrders) List(_ context.Context, f orderdom.ListFilter) ([]orderdom.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []orderdom.Order
	for _, o := range m.byID {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if f.Offset >= len(out) {
		return []orderdom.Order{}, total, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (m *memOrders) Stats(context.Context) (orderdom.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st orderdom.Stats
	for _, o := range m.byID {
		st.Tally(o.Status, 1, o.Total)
	}
	return st, nil
}

type fakeProvider struct {
	created  []paymentdom.SessionParams
	sessions map[string]paymentdom.Session
	err      error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: map[string]paymentdom.Session{}}
}

func (p *fakeProvider) CreateSession(_ context.Context, params paymentdom.SessionParams) (paymentdom.Session, error) {
	if p.err != nil {
		return paymentdom.Session{}, p.err
	}
	p.created = append(p.created, params)
	s := paymentdom.Session{
		ID:            paymentdom.MockSessionPrefix + params.OrderID,
		URL:           "https://pay.example/" + params.OrderID,
		PaymentStatus: paymentdom.PaymentStatusUnpaid,
		OrderID:       params.OrderID,
	}
	p.sessions[s.ID] = s
	return s, nil
}

func (p *fakeProvider) GetSession(_ context.Context, id string) (paymentdom.Session, error) {
	s, ok := p.sessions[id]
	if !ok {
		return paymentdom.Session{}, paymentdom.ErrSessionNotFound
	}
	return s, nil
}

func (p *fakeProvider) pay(id string) {
	s := p.sessions[id]
	s.PaymentStatus = paymentdom.PaymentStatusPaid
	p.sessions[id] = s
}

type fakeMailer struct {
	sent []orderdom.Order
	err  error
}

func (m *fakeMailer) SendOrderConfirmation(_ context.Context, o orderdom.Order) error {
	m.sent = append(m.sent, o)
	return m.err
}

type fakeCourier struct {
	requests []courierdom.GuideRequest
	err      error
}

func (c *fakeCourier) CreateGuide(_ context.Context, req courierdom.GuideRequest) (courierdom.Guide, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return courierdom.Guide{}, c.err
	}
	return courierdom.Guide{
		TrackingNumber: "CE-2026-000001",
		GuideURL:       "https://guias.example/CE-2026-000001.pdf",
		EstimatedDays:  2,
		Cost:           common.MustParseMoney("35"),
	}, nil
}

func (c *fakeCourier) Tracking(_ context.Context, n string) (courierdom.TrackingInfo, error) {
	return courierdom.TrackingInfo{TrackingNumber: n, Status: "in_transit"}, nil
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var errBoom = errors.New("boom")

func catalogueFixture() []productdom.Product {
	return []productdom.Product{
		{ID: "1", Name: "Anillo Plata", Price: common.MustParseMoney("250"), Stock: 5, ImageURL: "products/anillo.jpg"},
		{ID: "2", Name: "Collar Oro", Price: common.MustParseMoney("450"), Stock: 3, ImageURL: "https://cdn.example/collar.jpg"},
	}
}
