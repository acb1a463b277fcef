// internal/adapters/out/db/product_repository_sql.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbcommon "modaorganica/internal/adapters/out/db/common"
	productdom "modaorganica/internal/domain/product"
)

// ProductRepositorySQL stores the catalogue in Postgres or sqlite.
type ProductRepositorySQL struct {
	DB      *sql.DB
	Dialect dbcommon.Dialect
	now     func() time.Time
}

func NewProductRepositorySQL(db *sql.DB, d dbcommon.Dialect) *ProductRepositorySQL {
	return &ProductRepositorySQL{DB: db, Dialect: d, now: time.Now}
}

const productColumns = `id, sku, name, description, price, stock, image_url, created_at, updated_at`

func (r *ProductRepositorySQL) List(ctx context.Context) ([]productdom.Product, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	rows, err := run.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []productdom.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepositorySQL) GetByID(ctx context.Context, id productdom.ID) (productdom.Product, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	q := r.Dialect.Rebind(`SELECT ` + productColumns + ` FROM products WHERE id = ?`)
	p, err := scanProduct(run.QueryRowContext(ctx, q, id.Normalize().String()))
	if errors.Is(err, sql.ErrNoRows) {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, err
}

func (r *ProductRepositorySQL) Upsert(ctx context.Context, p productdom.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	now := r.now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	run := dbcommon.GetRunner(ctx, r.DB)
	q := r.Dialect.Rebind(`
INSERT INTO products (` + productColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
  sku = excluded.sku,
  name = excluded.name,
  description = excluded.description,
  price = excluded.price,
  stock = excluded.stock,
  image_url = excluded.image_url,
  updated_at = excluded.updated_at`)
	_, err := run.ExecContext(ctx, q,
		p.ID.String(), p.SKU, p.Name, p.Description, p.Price, p.Stock, p.ImageURL,
		dbcommon.TimeOf(p.CreatedAt), dbcommon.TimeOf(p.UpdatedAt),
	)
	return err
}

func scanProduct(s dbcommon.RowScanner) (productdom.Product, error) {
	var (
		p                productdom.Product
		id               string
		created, updated dbcommon.Time
	)
	if err := s.Scan(&id, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &created, &updated); err != nil {
		return productdom.Product{}, err
	}
	p.ID = productdom.ID(id)
	p.CreatedAt = created.Time
	p.UpdatedAt = updated.Time
	return p, nil
}
