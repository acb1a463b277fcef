// internal/adapters/out/firestore/order_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	orderdom "modaorganica/internal/domain/order"
	productdom "modaorganica/internal/domain/product"
)

// OrderRepositoryFS stores orders in the "orders" collection (docId = order id).
type OrderRepositoryFS struct {
	Client *firestore.Client
}

func NewOrderRepositoryFS(client *firestore.Client) *OrderRepositoryFS {
	return &OrderRepositoryFS{Client: client}
}

func (r *OrderRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("orders")
}

// Create fails with ErrConflict when the doc already exists.
func (r *OrderRepositoryFS) Create(ctx context.Context, o orderdom.Order) error {
	if r.Client == nil {
		return errors.New("order_repository_fs: firestore client is nil")
	}
	_, err := r.col().Doc(o.ID).Create(ctx, orderToData(o))
	if status.Code(err) == codes.AlreadyExists {
		return orderdom.ErrConflict
	}
	return err
}

func (r *OrderRepositoryFS) Update(ctx context.Context, o orderdom.Order) error {
	if r.Client == nil {
		return errors.New("order_repository_fs: firestore client is nil")
	}
	ref := r.col().Doc(o.ID)
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, orderToData(o))
	})
	if status.Code(err) == codes.NotFound {
		return orderdom.ErrNotFound
	}
	return err
}

func (r *OrderRepositoryFS) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	if r.Client == nil {
		return orderdom.Order{}, errors.New("order_repository_fs: firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return orderdom.Order{}, orderdom.ErrNotFound
		}
		return orderdom.Order{}, err
	}
	return orderFromData(snap.Ref.ID, snap.Data()), nil
}

func (r *OrderRepositoryFS) GetBySessionID(ctx context.Context, sessionID string) (orderdom.Order, error) {
	if r.Client == nil {
		return orderdom.Order{}, errors.New("order_repository_fs: firestore client is nil")
	}
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	it := r.col().Where("paymentSessionId", "==", sid).Limit(1).Documents(ctx)
	defer it.Stop()

	snap, err := it.Next()
	if errors.Is(err, iterator.Done) {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	if err != nil {
		return orderdom.Order{}, err
	}
	return orderFromData(snap.Ref.ID, snap.Data()), nil
}

// List narrows by status/municipality in Firestore and pages in memory.
// Sorting here avoids a composite index per filter combination.
func (r *OrderRepositoryFS) List(ctx context.Context, f orderdom.ListFilter) ([]orderdom.Order, int64, error) {
	if r.Client == nil {
		return nil, 0, errors.New("order_repository_fs: firestore client is nil")
	}
	q := r.col().Query
	if f.Status != "" {
		q = q.Where("status", "==", string(f.Status))
	}
	if f.Municipality != "" {
		q = q.Where("shipping.municipality", "==", f.Municipality)
	}

	var matched []orderdom.Order
	err := r.each(ctx, q, func(o orderdom.Order) {
		if f.Match(o) {
			matched = append(matched, o)
		}
	})
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []orderdom.Order{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[f.Offset:end], total, nil
}

func (r *OrderRepositoryFS) Stats(ctx context.Context) (orderdom.Stats, error) {
	var st orderdom.Stats
	if r.Client == nil {
		return st, errors.New("order_repository_fs: firestore client is nil")
	}
	err := r.each(ctx, r.col().Query, func(o orderdom.Order) {
		st.Tally(o.Status, 1, o.Total)
	})
	return st, err
}

func (r *OrderRepositoryFS) each(ctx context.Context, q firestore.Query, fn func(orderdom.Order)) error {
	it := q.Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		fn(orderFromData(snap.Ref.ID, snap.Data()))
	}
}

func orderToData(o orderdom.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"productId":   it.ProductID.String(),
			"productName": it.ProductName,
			"quantity":    it.Quantity,
			"price":       it.Price.String(),
		})
	}
	shipping := map[string]any{
		"department":    o.Shipping.Department,
		"municipality":  o.Shipping.Municipality,
		"address":       o.Shipping.Address,
		"deliveryType":  o.Shipping.DeliveryType,
		"pickupBranch":  o.Shipping.PickupBranch,
		"deliveryNotes": o.Shipping.DeliveryNotes,
	}
	if o.Shipping.Lat != nil && o.Shipping.Lng != nil {
		shipping["lat"] = *o.Shipping.Lat
		shipping["lng"] = *o.Shipping.Lng
	}

	data := map[string]any{
		"status":           string(o.Status),
		"userId":           o.UserID,
		"customerEmail":    o.CustomerEmail,
		"customerName":     o.CustomerName,
		"customerPhone":    o.CustomerPhone,
		"shipping":         shipping,
		"shippingMethod":   o.ShippingMethod,
		"requiresCourier":  o.RequiresCourier,
		"items":            items,
		"subtotal":         o.Subtotal.String(),
		"shippingCost":     o.ShippingCost.String(),
		"total":            o.Total.String(),
		"paymentSessionId": o.PaymentSessionID,
		"trackingNumber":   o.TrackingNumber,
		"guideUrl":         o.GuideURL,
		"createdAt":        o.CreatedAt,
		"updatedAt":        o.UpdatedAt,
	}
	if o.PaidAt != nil {
		data["paidAt"] = *o.PaidAt
	}
	return data
}

func orderFromData(id string, m map[string]any) orderdom.Order {
	o := orderdom.Order{
		ID:               id,
		Status:           orderdom.Status(asString(m["status"])),
		UserID:           asString(m["userId"]),
		CustomerEmail:    asString(m["customerEmail"]),
		CustomerName:     asString(m["customerName"]),
		CustomerPhone:    asString(m["customerPhone"]),
		ShippingMethod:   asString(m["shippingMethod"]),
		RequiresCourier:  asBool(m["requiresCourier"]),
		Subtotal:         asMoney(m["subtotal"]),
		ShippingCost:     asMoney(m["shippingCost"]),
		Total:            asMoney(m["total"]),
		PaymentSessionID: asString(m["paymentSessionId"]),
		TrackingNumber:   asString(m["trackingNumber"]),
		GuideURL:         asString(m["guideUrl"]),
	}

	sm := asMapAny(m["shipping"])
	o.Shipping = orderdom.Shipping{
		Department:    asString(sm["department"]),
		Municipality:  asString(sm["municipality"]),
		Address:       asString(sm["address"]),
		DeliveryType:  asString(sm["deliveryType"]),
		PickupBranch:  asString(sm["pickupBranch"]),
		DeliveryNotes: asString(sm["deliveryNotes"]),
		Lat:           asFloatPtr(sm["lat"]),
		Lng:           asFloatPtr(sm["lng"]),
	}

	for _, raw := range asSlice(m["items"]) {
		im := asMapAny(raw)
		if im == nil {
			continue
		}
		o.Items = append(o.Items, orderdom.Item{
			ProductID:   productdom.ID(asString(im["productId"])),
			ProductName: asString(im["productName"]),
			Quantity:    asInt(im["quantity"]),
			Price:       asMoney(im["price"]),
		})
	}

	if t, ok := asTime(m["createdAt"]); ok {
		o.CreatedAt = t
	}
	if t, ok := asTime(m["updatedAt"]); ok {
		o.UpdatedAt = t
	}
	if t, ok := asTime(m["paidAt"]); ok {
		o.PaidAt = &t
	}
	return o
}
