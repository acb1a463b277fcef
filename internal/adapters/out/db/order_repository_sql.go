// internal/adapters/out/db/order_repository_sql.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	dbcommon "modaorganica/internal/adapters/out/db/common"
	common "modaorganica/internal/domain/common"
	orderdom "modaorganica/internal/domain/order"
)

// OrderRepositorySQL stores orders with items and shipping as JSON columns.
type OrderRepositorySQL struct {
	DB      *sql.DB
	Dialect dbcommon.Dialect
}

func NewOrderRepositorySQL(db *sql.DB, d dbcommon.Dialect) *OrderRepositorySQL {
	return &OrderRepositorySQL{DB: db, Dialect: d}
}

const orderColumns = `id, status, user_id, customer_email, customer_name, customer_phone,
  shipping, shipping_method, requires_courier, items,
  subtotal, shipping_cost, total,
  payment_session_id, tracking_number, guide_url,
  created_at, updated_at, paid_at,
  municipality, has_location`

func (r *OrderRepositorySQL) Create(ctx context.Context, o orderdom.Order) error {
	args, err := orderArgs(o)
	if err != nil {
		return err
	}
	run := dbcommon.GetRunner(ctx, r.DB)
	q := r.Dialect.Rebind(`INSERT INTO orders (` + orderColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := run.ExecContext(ctx, q, args...); err != nil {
		if dbcommon.IsUniqueViolation(err) {
			return orderdom.ErrConflict
		}
		return err
	}
	return nil
}

func (r *OrderRepositorySQL) Update(ctx context.Context, o orderdom.Order) error {
	args, err := orderArgs(o)
	if err != nil {
		return err
	}
	run := dbcommon.GetRunner(ctx, r.DB)
	q := r.Dialect.Rebind(`
UPDATE orders SET
  status = ?, user_id = ?, customer_email = ?, customer_name = ?, customer_phone = ?,
  shipping = ?, shipping_method = ?, requires_courier = ?, items = ?,
  subtotal = ?, shipping_cost = ?, total = ?,
  payment_session_id = ?, tracking_number = ?, guide_url = ?,
  created_at = ?, updated_at = ?, paid_at = ?,
  municipality = ?, has_location = ?
WHERE id = ?`)
	// id goes last for the WHERE clause
	args = append(args[1:], args[0])
	res, err := run.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return orderdom.ErrNotFound
	}
	return nil
}

func (r *OrderRepositorySQL) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	return r.getOne(ctx, `id = ?`, strings.TrimSpace(id))
}

func (r *OrderRepositorySQL) GetBySessionID(ctx context.Context, sessionID string) (orderdom.Order, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return r.getOne(ctx, `payment_session_id = ?`, sid)
}

func (r *OrderRepositorySQL) getOne(ctx context.Context, where string, arg any) (orderdom.Order, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	q := r.Dialect.Rebind(`SELECT ` + orderColumns + ` FROM orders WHERE ` + where + ` LIMIT 1`)
	o, err := scanOrder(run.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return o, err
}

// List filters on the denormalized municipality/has_location columns and pages newest first.
func (r *OrderRepositorySQL) List(ctx context.Context, f orderdom.ListFilter) ([]orderdom.Order, int64, error) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Municipality != "" {
		conds = append(conds, "municipality = ?")
		args = append(args, f.Municipality)
	}
	if f.WithLocation {
		conds = append(conds, "has_location = ?")
		args = append(args, true)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	run := dbcommon.GetRunner(ctx, r.DB)
	var total int64
	if err := run.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT COUNT(*) FROM orders`+where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db: count orders: %w", err)
	}

	q := r.Dialect.Rebind(`SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`)
	rows, err := run.QueryContext(ctx, q, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("db: list orders: %w", err)
	}
	defer rows.Close()

	out := make([]orderdom.Order, 0, f.Limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *OrderRepositorySQL) Stats(ctx context.Context) (orderdom.Stats, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	var st orderdom.Stats

	rows, err := run.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return st, fmt.Errorf("db: order stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return st, err
		}
		st.Tally(orderdom.Status(status), n, common.Zero)
	}
	if err := rows.Err(); err != nil {
		return st, err
	}

	// sqlite keeps amounts as TEXT, so revenue is summed here rather than with SUM()
	q := r.Dialect.Rebind(`SELECT total FROM orders WHERE status IN (?, ?)`)
	totals, err := run.QueryContext(ctx, q, string(orderdom.StatusShipped), string(orderdom.StatusDelivered))
	if err != nil {
		return st, fmt.Errorf("db: order revenue: %w", err)
	}
	defer totals.Close()
	for totals.Next() {
		var m common.Money
		if err := totals.Scan(&m); err != nil {
			return st, err
		}
		st.TotalRevenue = st.TotalRevenue.Add(m)
	}
	return st, totals.Err()
}

func orderArgs(o orderdom.Order) ([]any, error) {
	shipping, err := json.Marshal(o.Shipping)
	if err != nil {
		return nil, fmt.Errorf("db: encode shipping: %w", err)
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("db: encode items: %w", err)
	}
	return []any{
		o.ID, string(o.Status), o.UserID, o.CustomerEmail, o.CustomerName, o.CustomerPhone,
		string(shipping), o.ShippingMethod, o.RequiresCourier, string(items),
		o.Subtotal, o.ShippingCost, o.Total,
		o.PaymentSessionID, o.TrackingNumber, o.GuideURL,
		dbcommon.TimeOf(o.CreatedAt), dbcommon.TimeOf(o.UpdatedAt), dbcommon.ToDBTime(o.PaidAt),
		strings.TrimSpace(o.Shipping.Municipality), o.HasLocation(),
	}, nil
}

func scanOrder(s dbcommon.RowScanner) (orderdom.Order, error) {
	var (
		o                      orderdom.Order
		status, municipality   string
		hasLocation            bool
		shipping, items        []byte
		created, updated, paid dbcommon.Time
	)
	err := s.Scan(
		&o.ID, &status, &o.UserID, &o.CustomerEmail, &o.CustomerName, &o.CustomerPhone,
		&shipping, &o.ShippingMethod, &o.RequiresCourier, &items,
		&o.Subtotal, &o.ShippingCost, &o.Total,
		&o.PaymentSessionID, &o.TrackingNumber, &o.GuideURL,
		&created, &updated, &paid,
		&municipality, &hasLocation,
	)
	if err != nil {
		return orderdom.Order{}, err
	}
	if err := json.Unmarshal(shipping, &o.Shipping); err != nil {
		return orderdom.Order{}, fmt.Errorf("db: decode shipping of %s: %w", o.ID, err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return orderdom.Order{}, fmt.Errorf("db: decode items of %s: %w", o.ID, err)
	}
	o.Status = orderdom.Status(status)
	o.CreatedAt = created.Time
	o.UpdatedAt = updated.Time
	o.PaidAt = paid.Ptr()
	return o, nil
}
