package order

import (
	"strings"
	"time"

	common "modaorganica/internal/domain/common"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ListFilter selects orders for the admin panel. Zero values mean "any".
type ListFilter struct {
	Status       Status
	Municipality string
	// WithLocation keeps only orders pinned on the map.
	WithLocation bool
	Limit        int
	Offset       int
}

// Normalize trims the filter and clamps paging: a limit outside 1..MaxListLimit becomes DefaultListLimit.
func (f ListFilter) Normalize() ListFilter {
	f.Municipality = strings.TrimSpace(f.Municipality)
	if f.Limit <= 0 || f.Limit > MaxListLimit {
		f.Limit = DefaultListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Match applies the non-paging part of the filter. Municipality matches exactly.
func (f ListFilter) Match(o Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.Municipality != "" && strings.TrimSpace(o.Shipping.Municipality) != f.Municipality {
		return false
	}
	if f.WithLocation && !o.HasLocation() {
		return false
	}
	return true
}

// Page is one slice of a filtered listing. Total counts every match, Count this page.
type Page struct {
	Orders []Order `json:"orders"`
	Count  int     `json:"count"`
	Total  int64   `json:"total"`
}

func NewPage(orders []Order, total int64) Page {
	if orders == nil {
		orders = []Order{}
	}
	return Page{Orders: orders, Count: len(orders), Total: total}
}

// Stats is the dashboard summary.
type Stats struct {
	TotalOrders      int64        `json:"total_orders"`
	PendingOrders    int64        `json:"pending_orders"`
	PaidOrders       int64        `json:"paid_orders"`
	ProcessingOrders int64        `json:"processing_orders"`
	ShippedOrders    int64        `json:"shipped_orders"`
	DeliveredOrders  int64        `json:"delivered_orders"`
	CancelledOrders  int64        `json:"cancelled_orders"`
	TotalRevenue     common.Money `json:"total_revenue"`
}

// Tally counts n orders in status whose totals add up to sum.
func (s *Stats) Tally(status Status, n int64, sum common.Money) {
	s.TotalOrders += n
	switch status {
	case StatusPending:
		s.PendingOrders += n
	case StatusPaid:
		s.PaidOrders += n
	case StatusProcessing:
		s.ProcessingOrders += n
	case StatusShipped:
		s.ShippedOrders += n
	case StatusDelivered:
		s.DeliveredOrders += n
	case StatusCancelled:
		s.CancelledOrders += n
	}
	if status.CountsAsRevenue() {
		s.TotalRevenue = s.TotalRevenue.Add(sum)
	}
}

// MapPoint is the slim view the delivery map plots.
type MapPoint struct {
	ID           string       `json:"id"`
	Status       Status       `json:"status"`
	CustomerName string       `json:"customer_name"`
	Municipality string       `json:"municipality"`
	Address      string       `json:"address"`
	Lat          float64      `json:"lat"`
	Lng          float64      `json:"lng"`
	Total        common.Money `json:"total"`
	CreatedAt    time.Time    `json:"created_at"`
}

// MapPointOf returns false for orders without a pinned location.
func MapPointOf(o Order) (MapPoint, bool) {
	if !o.HasLocation() {
		return MapPoint{}, false
	}
	return MapPoint{
		ID:           o.ID,
		Status:       o.Status,
		CustomerName: o.CustomerName,
		Municipality: o.Shipping.Municipality,
		Address:      o.Shipping.Address,
		Lat:          *o.Shipping.Lat,
		Lng:          *o.Shipping.Lng,
		Total:        o.Total,
		CreatedAt:    o.CreatedAt,
	}, true
}
