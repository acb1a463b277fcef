package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "modaorganica/internal/domain/common"
)

func sample() Order {
	return Order{
		CustomerEmail: " ana@example.com ",
		CustomerName:  "Ana",
		Shipping:      Shipping{Municipality: "Chiantla", DeliveryType: "home_delivery"},
		ShippingCost:  common.MustParseMoney("15"),
		Items: []Item{
			{ProductID: "1", ProductName: "Anillo Plata", Quantity: 1, Price: common.MustParseMoney("250")},
			{ProductID: "2", ProductName: "Collar Oro", Quantity: 2, Price: common.MustParseMoney("450")},
		},
	}
}

func TestNew_ComputesTotals(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	o, err := New("o-1", sample(), now)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "ana@example.com", o.CustomerEmail)
	assert.Equal(t, "1150.00", o.Subtotal.String())
	assert.Equal(t, "1165.00", o.Total.String())
	assert.Equal(t, now, o.CreatedAt)
}

func TestNew_Invalid(t *testing.T) {
	s := sample()
	s.Items = nil
	_, err := New("o-1", s, time.Now())
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = New("", sample(), time.Now())
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestMarkPaid_Idempotent(t *testing.T) {
	o, err := New("o-1", sample(), time.Now())
	require.NoError(t, err)

	changed, err := o.MarkPaid(time.Now())
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, o.PaidAt)

	changed, err = o.MarkPaid(time.Now())
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, o.AttachGuide("CE-2026-123456", "https://guides/x.pdf", time.Now()))
	assert.Equal(t, StatusProcessing, o.Status)

	o.Status = StatusCancelled
	_, err = o.MarkPaid(time.Now())
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" Delivered ")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, st)

	_, err = ParseStatus("lost")
	assert.ErrorIs(t, err, ErrUnknownStatus)
	_, err = ParseStatus("")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestSetStatus_Lifecycle(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	later := created.Add(time.Hour)

	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPaid, StatusProcessing, true},
		{StatusPaid, StatusShipped, true},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusPending, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusShipped, false},
		{StatusCancelled, StatusPaid, false},
		{StatusDelivered, StatusDelivered, true},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			o, err := New("o-1", sample(), created)
			require.NoError(t, err)
			o.Status = tc.from

			err = o.SetStatus(tc.to, later)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrInvalidStatus)
				assert.Equal(t, tc.from, o.Status)
				assert.Equal(t, created, o.UpdatedAt)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, o.Status)
			if tc.from == tc.to {
				assert.Equal(t, created, o.UpdatedAt, "same status is a no-op")
			} else {
				assert.Equal(t, later, o.UpdatedAt)
			}
		})
	}
}

func TestSetStatus_PaidStampsPaidAt(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	o, err := New("o-1", sample(), now)
	require.NoError(t, err)

	require.NoError(t, o.SetStatus(StatusPaid, now.Add(time.Minute)))
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, now.Add(time.Minute), *o.PaidAt)
	assert.True(t, o.Status.IsPaid())
	assert.True(t, StatusDelivered.IsPaid())
}

func TestRedacted_DropsContactData(t *testing.T) {
	lat, lng := 15.3, -91.4
	s := sample()
	s.UserID = "uid-1"
	s.CustomerPhone = "5555-1234"
	s.Shipping.Address = "4a calle 2-10"
	s.Shipping.DeliveryNotes = "portón verde"
	s.Shipping.Lat, s.Shipping.Lng = &lat, &lng
	o, err := New("o-1", s, time.Now())
	require.NoError(t, err)
	o.AttachSession("cs_test_1", time.Now())
	o.TrackingNumber = "CE-1"

	r := o.Redacted()
	assert.Empty(t, r.UserID)
	assert.Empty(t, r.CustomerEmail)
	assert.Empty(t, r.CustomerName)
	assert.Empty(t, r.CustomerPhone)
	assert.Empty(t, r.PaymentSessionID)
	assert.Empty(t, r.Shipping.Address)
	assert.Empty(t, r.Shipping.DeliveryNotes)
	assert.Nil(t, r.Shipping.Lat)
	assert.False(t, r.HasLocation())

	assert.Equal(t, "Chiantla", r.Shipping.Municipality)
	assert.Equal(t, "CE-1", r.TrackingNumber)
	assert.True(t, r.Total.Equal(o.Total))
	assert.Len(t, r.Items, 2)

	// the original is untouched
	assert.Equal(t, "ana@example.com", o.CustomerEmail)
	assert.True(t, o.HasLocation())
}
