// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	productdom "modaorganica/internal/domain/product"
)

// ProductRepositoryFS is a Firestore-based implementation of the catalogue.
// docId = product id; price is stored as a fixed-point string plus priceCents for ordering.
type ProductRepositoryFS struct {
	Client *firestore.Client
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("products")
}

func (r *ProductRepositoryFS) List(ctx context.Context) ([]productdom.Product, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}
	it := r.col().OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer it.Stop()

	out := []productdom.Product{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, productFromData(snap.Ref.ID, snap.Data()))
	}
	return out, nil
}

// GetByID returns a single Product by ID
func (r *ProductRepositoryFS) GetByID(ctx context.Context, id productdom.ID) (productdom.Product, error) {
	if r.Client == nil {
		return productdom.Product{}, errors.New("firestore client is nil")
	}
	id = id.Normalize()
	if id.IsZero() {
		return productdom.Product{}, productdom.ErrNotFound
	}

	snap, err := r.col().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return productdom.Product{}, productdom.ErrNotFound
		}
		return productdom.Product{}, err
	}
	return productFromData(snap.Ref.ID, snap.Data()), nil
}

// Upsert overwrites the full doc.
func (r *ProductRepositoryFS) Upsert(ctx context.Context, p productdom.Product) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	data := productToData(p)
	_, err := r.col().Doc(p.ID.String()).Set(ctx, data)
	return err
}

func productToData(p productdom.Product) map[string]any {
	return map[string]any{
		"sku":         p.SKU,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price.String(),
		"priceCents":  p.Price.Cents(),
		"stock":       p.Stock,
		"imageUrl":    p.ImageURL,
		"createdAt":   p.CreatedAt,
		"updatedAt":   p.UpdatedAt,
	}
}

func productFromData(id string, m map[string]any) productdom.Product {
	p := productdom.Product{
		ID:          productdom.ID(id),
		SKU:         asString(m["sku"]),
		Name:        asString(m["name"]),
		Description: asString(m["description"]),
		Price:       asMoney(m["price"]),
		Stock:       asInt(m["stock"]),
		ImageURL:    asString(m["imageUrl"]),
	}
	// 旧 schema は image_url
	if p.ImageURL == "" {
		p.ImageURL = asString(m["image_url"])
	}
	if t, ok := asTime(m["createdAt"]); ok {
		p.CreatedAt = t
	}
	if t, ok := asTime(m["updatedAt"]); ok {
		p.UpdatedAt = t
	}
	return p
}
