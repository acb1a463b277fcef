package usecase

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	checkoutdom "modaorganica/internal/domain/checkout"
	common "modaorganica/internal/domain/common"
	locationdom "modaorganica/internal/domain/location"
	paymentdom "modaorganica/internal/domain/payment"
	shippingdom "modaorganica/internal/domain/shipping"
)

func validForm() checkoutdom.Form {
	return checkoutdom.Form{
		Email:        "ana@example.com",
		FullName:     "Ana López",
		Phone:        "+502 5555-1234",
		Department:   "GT-13",
		Municipality: "GT-13-02",
		Address:      "4a calle 2-10 zona 1, Chiantla",
	}
}

type coordinatorFixture struct {
	repo    *memStateRepo
	store   *CartStore
	gateway *fakeGateway
	co      *CheckoutCoordinator
}

func newCoordinatorFixture(t *testing.T) coordinatorFixture {
	t.Helper()
	ctx := context.Background()
	repo := newMemStateRepo()
	store := NewCartStore(ctx, repo, "", nil)
	gw := &fakeGateway{resp: paymentdom.CheckoutSessionResponse{
		CheckoutURL: "https://checkout.stripe.com/c/pay/cs_test_abc",
		SessionID:   "cs_test_abc",
		OrderID:     "ord-1",
	}}
	co := NewCheckoutCoordinator(store, gw, shippingdom.NewTable(shippingdom.DefaultRules()), locationdom.Guatemala(), nil)
	t.Cleanup(co.Close)
	return coordinatorFixture{repo: repo, store: store, gateway: gw, co: co}
}

func (f coordinatorFixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.store.AddProduct(ctx, refAnillo, 1)
	require.NoError(t, err)
	_, err = f.store.AddProduct(ctx, refCollar, 2)
	require.NoError(t, err)
}

func TestCoordinator_TotalsFollowCartAndMunicipality(t *testing.T) {
	f := newCoordinatorFixture(t)

	var updates []Totals
	stop := f.co.WatchTotals(func(tt Totals) { updates = append(updates, tt) })
	defer stop()

	f.fillCart(t)
	tt := f.co.SetMunicipality(" CHIANTLA ")
	assert.Equal(t, "1150.00", tt.Subtotal.String())
	assert.Equal(t, "15.00", tt.Shipping.String())
	assert.Equal(t, "1165.00", tt.Total.String())
	assert.True(t, tt.Local)
	assert.Equal(t, shippingdom.MethodLocalDelivery, tt.Method)

	tt = f.co.SetMunicipality("Mixco")
	assert.Equal(t, "35.00", tt.Shipping.String())
	assert.Equal(t, "Cargo Expreso", tt.Provider)

	f.store.UpdateQuantity(context.Background(), "2", 1)
	assert.Equal(t, "735.00", f.co.Totals().Total.String())

	// initial + 2 adds + 2 location changes + 1 quantity change
	assert.Len(t, updates, 6)
	assert.Equal(t, "735.00", updates[len(updates)-1].Total.String())
}

func TestCoordinator_TotalsResolveCatalogueIDs(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.fillCart(t)

	tt := f.co.SetLocation("GT-13", "GT-13-02")
	assert.True(t, tt.Local)
	assert.Equal(t, "Chiantla", tt.Municipality)
}

func TestCoordinator_TotalsUseLiveRules(t *testing.T) {
	f := newCoordinatorFixture(t)
	table := shippingdom.NewTable(shippingdom.DefaultRules())
	co := NewCheckoutCoordinator(f.store, f.gateway, table, nil, nil)
	defer co.Close()
	f.fillCart(t)
	co.SetMunicipality("Huehuetenango")

	r := shippingdom.DefaultRules()
	r.Costs.Local = common.Zero
	require.NoError(t, table.Replace(r))

	assert.True(t, co.Totals().Shipping.IsZero())
	assert.Equal(t, "1150.00", co.Totals().Total.String())
}

func TestCoordinator_SubmitEmptyCart(t *testing.T) {
	f := newCoordinatorFixture(t)

	_, err := f.co.Submit(context.Background(), validForm())
	assert.ErrorIs(t, err, checkoutdom.ErrEmptyCart)
	assert.Equal(t, checkoutdom.StateIdle, f.co.State())
	assert.Zero(t, f.gateway.callCount())
}

func TestCoordinator_SubmitInvalidFormMakesNoRequest(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.fillCart(t)

	form := validForm()
	form.Email = "ana"
	form.Phone = "1234"
	form.Municipality = "GT-01-05"

	_, err := f.co.Submit(context.Background(), form)
	var ve *checkoutdom.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Field("email"))
	assert.NotEmpty(t, ve.Field("phone"))
	assert.NotEmpty(t, ve.Field("municipality"))
	assert.Equal(t, checkoutdom.StateIdle, f.co.State())
	assert.Zero(t, f.gateway.callCount())
	assert.Len(t, f.store.GetCart().Items, 2)
}

func TestCoordinator_SubmitSuccessBuildsRequestAndKeepsCart(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.fillCart(t)

	resp, err := f.co.Submit(context.Background(), validForm())
	require.NoError(t, err)
	assert.Equal(t, "cs_test_abc", resp.SessionID)
	assert.Equal(t, checkoutdom.StateAwaitingPayment, f.co.State())
	assert.Len(t, f.store.GetCart().Items, 2)

	require.Equal(t, 1, f.gateway.callCount())
	req := f.gateway.calls[0]
	assert.Equal(t, "ana@example.com", req.CustomerEmail)
	assert.Equal(t, "Ana López", req.CustomerName)
	require.Len(t, req.Items, 2)
	assert.Equal(t, 2, req.Items[1].Quantity)
	assert.Equal(t, "1150.00", req.Subtotal.String())
	assert.Equal(t, "15.00", req.ShippingCost.String())
	assert.Equal(t, "1165.00", req.Total.String())
	assert.Equal(t, "Chiantla", req.ShippingMunicipality)
	assert.Equal(t, "Huehuetenango", req.ShippingAddress.Department)
	assert.Equal(t, string(checkoutdom.DeliveryHome), req.DeliveryType)
}

func TestCoordinator_DoubleSubmitIsRejected(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.fillCart(t)
	f.gateway.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.co.Submit(context.Background(), validForm())
		done <- err
	}()

	require.Eventually(t, func() bool { return f.gateway.callCount() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, checkoutdom.StateSubmitting, f.co.State())

	_, err := f.co.Submit(context.Background(), validForm())
	assert.ErrorIs(t, err, checkoutdom.ErrSubmitInProgress)
	assert.Equal(t, checkoutdom.MsgInProgress, f.co.UserMessage(err))

	close(f.gateway.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.gateway.callCount())
}

func TestCoordinator_SubmitFailuresReturnToIdle(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantMsg string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "network",
			err:     &checkoutdom.NetworkError{Op: "post", Err: &net.OpError{Op: "dial", Err: errors.New("refused")}},
			wantMsg: checkoutdom.MsgNetwork,
			check: func(t *testing.T, err error) {
				var ne *checkoutdom.NetworkError
				assert.ErrorAs(t, err, &ne)
			},
		},
		{
			name:    "backend message verbatim",
			err:     &checkoutdom.BackendError{Status: 400, Message: "Producto agotado"},
			wantMsg: "Producto agotado",
		},
		{
			name:    "backend without message",
			err:     &checkoutdom.BackendError{Status: 500},
			wantMsg: checkoutdom.MsgBackendGeneric,
		},
		{
			name:    "unclassified",
			err:     errors.New("weird"),
			wantMsg: "weird",
			check: func(t *testing.T, err error) {
				var be *checkoutdom.BackendError
				assert.ErrorAs(t, err, &be)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCoordinatorFixture(t)
			f.fillCart(t)
			f.gateway.err = tc.err

			_, err := f.co.Submit(context.Background(), validForm())
			require.Error(t, err)
			assert.Equal(t, tc.wantMsg, f.co.UserMessage(err))
			assert.Equal(t, checkoutdom.StateIdle, f.co.State())
			assert.Len(t, f.store.GetCart().Items, 2)
			if tc.check != nil {
				tc.check(t, err)
			}
		})
	}
}

func TestCoordinator_TimeoutIsNetworkError(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.fillCart(t)
	f.gateway.block = make(chan struct{})
	defer close(f.gateway.block)
	f.co.WithTimeout(20 * time.Millisecond)

	_, err := f.co.Submit(context.Background(), validForm())
	var ne *checkoutdom.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, checkoutdom.StateIdle, f.co.State())
}

func TestCoordinator_SuccessClearsCart(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.fillCart(t)
	_, err := f.co.Submit(context.Background(), validForm())
	require.NoError(t, err)

	conf, err := f.co.HandleSuccess(context.Background(), "cs_test_abc")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", conf.OrderID)
	assert.True(t, f.store.GetCart().IsEmpty())
	assert.JSONEq(t, `{"items":[],"subtotal":0,"total":0,"itemCount":0}`, f.repo.raw("cart"))
	assert.Equal(t, checkoutdom.StateIdle, f.co.State())
	assert.True(t, f.co.Totals().Subtotal.IsZero())

	_, err = f.co.HandleSuccess(context.Background(), "cs_test_abc")
	require.NoError(t, err)
	assert.True(t, f.store.GetCart().IsEmpty())
}

func TestCoordinator_SuccessWithoutSessionIDKeepsCart(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.fillCart(t)

	_, err := f.co.HandleSuccess(context.Background(), "  ")
	assert.ErrorIs(t, err, checkoutdom.ErrMissingSessionID)
	assert.Len(t, f.store.GetCart().Items, 2)
}

func TestCoordinator_CancelPreservesCart(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.fillCart(t)
	_, err := f.co.Submit(context.Background(), validForm())
	require.NoError(t, err)

	c := f.co.HandleCancel(context.Background())
	assert.Len(t, c.Items, 2)
	assert.Equal(t, "1150.00", c.Subtotal.String())
	assert.Equal(t, checkoutdom.StateIdle, f.co.State())

	reloaded := NewCartStore(context.Background(), f.repo, "", nil)
	assert.Len(t, reloaded.GetCart().Items, 2)
}
