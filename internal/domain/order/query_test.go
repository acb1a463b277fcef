package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	common "modaorganica/internal/domain/common"
)

func TestListFilter_Normalize(t *testing.T) {
	cases := []struct {
		in            ListFilter
		limit, offset int
	}{
		{ListFilter{}, DefaultListLimit, 0},
		{ListFilter{Limit: 10, Offset: 20}, 10, 20},
		{ListFilter{Limit: MaxListLimit}, MaxListLimit, 0},
		{ListFilter{Limit: MaxListLimit + 1}, DefaultListLimit, 0},
		{ListFilter{Limit: -3, Offset: -1}, DefaultListLimit, 0},
	}
	for _, tc := range cases {
		got := tc.in.Normalize()
		assert.Equal(t, tc.limit, got.Limit, "%+v", tc.in)
		assert.Equal(t, tc.offset, got.Offset, "%+v", tc.in)
	}
	assert.Equal(t, "Chiantla", ListFilter{Municipality: "  Chiantla "}.Normalize().Municipality)
}

func TestListFilter_Match(t *testing.T) {
	lat, lng := 15.3, -91.4
	pinned := Order{Status: StatusShipped, Shipping: Shipping{Municipality: "Chiantla", Lat: &lat, Lng: &lng}}
	halfPinned := Order{Status: StatusShipped, Shipping: Shipping{Municipality: "Chiantla", Lat: &lat}}

	assert.True(t, ListFilter{}.Match(pinned))
	assert.True(t, ListFilter{Status: StatusShipped, Municipality: "Chiantla", WithLocation: true}.Match(pinned))
	assert.False(t, ListFilter{Status: StatusPaid}.Match(pinned))
	assert.False(t, ListFilter{Municipality: "chiantla"}.Match(pinned), "municipality is exact")
	assert.False(t, ListFilter{WithLocation: true}.Match(halfPinned))
}

func TestStats_Tally(t *testing.T) {
	var st Stats
	st.Tally(StatusPending, 2, common.MustParseMoney("100"))
	st.Tally(StatusShipped, 1, common.MustParseMoney("265"))
	st.Tally(StatusDelivered, 3, common.MustParseMoney("500.50"))
	st.Tally(StatusCancelled, 1, common.MustParseMoney("75"))

	assert.EqualValues(t, 7, st.TotalOrders)
	assert.EqualValues(t, 2, st.PendingOrders)
	assert.EqualValues(t, 1, st.ShippedOrders)
	assert.EqualValues(t, 3, st.DeliveredOrders)
	assert.EqualValues(t, 1, st.CancelledOrders)
	assert.Equal(t, "765.50", st.TotalRevenue.String())
}

func TestNewPage_NeverNil(t *testing.T) {
	p := NewPage(nil, 0)
	assert.NotNil(t, p.Orders)
	assert.Zero(t, p.Count)
}

func TestMapPointOf(t *testing.T) {
	lat, lng := 15.3, -91.4
	o := Order{ID: "o-1", Status: StatusPaid, CreatedAt: time.Unix(0, 0),
		Shipping: Shipping{Municipality: "Chiantla", Lat: &lat, Lng: &lng}}
	p, ok := MapPointOf(o)
	assert.True(t, ok)
	assert.Equal(t, "o-1", p.ID)
	assert.InDelta(t, -91.4, p.Lng, 1e-9)

	o.Shipping.Lng = nil
	_, ok = MapPointOf(o)
	assert.False(t, ok)
}
