// internal/application/usecase/order_admin_usecase.go
package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	orderdom "modaorganica/internal/domain/order"
)

// OrderAdminUsecase backs the admin panel: listings, the dashboard numbers,
// the delivery map and manual status changes.
type OrderAdminUsecase struct {
	orders orderdom.Repository
	clock  Clock
	log    *zap.Logger
}

func NewOrderAdminUsecase(orders orderdom.Repository, logger *zap.Logger) *OrderAdminUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderAdminUsecase{orders: orders, clock: systemClock{}, log: logger.Named("order_admin_uc")}
}

func (u *OrderAdminUsecase) WithClock(c Clock) *OrderAdminUsecase {
	if c != nil {
		u.clock = c
	}
	return u
}

func (u *OrderAdminUsecase) List(ctx context.Context, f orderdom.ListFilter) (orderdom.Page, error) {
	f = f.Normalize()
	items, total, err := u.orders.List(ctx, f)
	if err != nil {
		return orderdom.Page{}, fmt.Errorf("order admin: list: %w", err)
	}
	return orderdom.NewPage(items, total), nil
}

func (u *OrderAdminUsecase) Get(ctx context.Context, id string) (orderdom.Order, error) {
	return u.orders.GetByID(ctx, strings.TrimSpace(id))
}

func (u *OrderAdminUsecase) Stats(ctx context.Context) (orderdom.Stats, error) {
	st, err := u.orders.Stats(ctx)
	if err != nil {
		return orderdom.Stats{}, fmt.Errorf("order admin: stats: %w", err)
	}
	return st, nil
}

// Map returns up to MaxListLimit pinned orders, newest first.
func (u *OrderAdminUsecase) Map(ctx context.Context, municipality string, status orderdom.Status) ([]orderdom.MapPoint, error) {
	f := orderdom.ListFilter{
		Status:       status,
		Municipality: municipality,
		WithLocation: true,
		Limit:        orderdom.MaxListLimit,
	}.Normalize()
	items, _, err := u.orders.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("order admin: map: %w", err)
	}
	points := make([]orderdom.MapPoint, 0, len(items))
	for _, o := range items {
		if p, ok := orderdom.MapPointOf(o); ok {
			points = append(points, p)
		}
	}
	return points, nil
}

// UpdateStatus returns order.ErrInvalidStatus for a move the lifecycle does not allow.
func (u *OrderAdminUsecase) UpdateStatus(ctx context.Context, id string, next orderdom.Status) (orderdom.Order, error) {
	o, err := u.orders.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return orderdom.Order{}, err
	}
	prev := o.Status
	if err := o.SetStatus(next, u.clock.Now().UTC()); err != nil {
		return orderdom.Order{}, err
	}
	if prev == next {
		return o, nil
	}
	if err := u.orders.Update(ctx, o); err != nil {
		return orderdom.Order{}, fmt.Errorf("order admin: update status: %w", err)
	}
	u.log.Info("order status changed",
		zap.String("orderId", o.ID),
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
	)
	return o, nil
}
