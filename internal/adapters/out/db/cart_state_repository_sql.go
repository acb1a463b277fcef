// internal/adapters/out/db/cart_state_repository_sql.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbcommon "modaorganica/internal/adapters/out/db/common"
)

// CartStateRepositorySQL keeps serialized carts by key (one row per storefront session).
type CartStateRepositorySQL struct {
	DB      *sql.DB
	Dialect dbcommon.Dialect
	now     func() time.Time
}

func NewCartStateRepositorySQL(db *sql.DB, d dbcommon.Dialect) *CartStateRepositorySQL {
	return &CartStateRepositorySQL{DB: db, Dialect: d, now: time.Now}
}

// Load returns (nil, nil) when the key has never been saved.
func (r *CartStateRepositorySQL) Load(ctx context.Context, key string) ([]byte, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	var raw string
	err := run.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT state FROM cart_states WHERE cart_key = ?`), key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

func (r *CartStateRepositorySQL) Save(ctx context.Context, key string, raw []byte) error {
	run := dbcommon.GetRunner(ctx, r.DB)
	q := r.Dialect.Rebind(`
INSERT INTO cart_states (cart_key, state, updated_at) VALUES (?, ?, ?)
ON CONFLICT (cart_key) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`)
	_, err := run.ExecContext(ctx, q, key, string(raw), dbcommon.TimeOf(r.now()))
	return err
}

func (r *CartStateRepositorySQL) Delete(ctx context.Context, key string) error {
	run := dbcommon.GetRunner(ctx, r.DB)
	_, err := run.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM cart_states WHERE cart_key = ?`), key)
	return err
}

// DeleteStale removes carts untouched since before cutoff and returns how many were removed.
func (r *CartStateRepositorySQL) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	res, err := run.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM cart_states WHERE updated_at < ?`), dbcommon.TimeOf(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
