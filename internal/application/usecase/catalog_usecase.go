// internal/application/usecase/catalog_usecase.go
package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	cartdom "modaorganica/internal/domain/cart"
	productdom "modaorganica/internal/domain/product"
)

// CatalogUsecase serves the product catalogue with browser-ready image URLs.
type CatalogUsecase struct {
	repo   productdom.Repository
	images ImageResolver
	log    *zap.Logger
}

func NewCatalogUsecase(repo productdom.Repository, logger *zap.Logger) *CatalogUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogUsecase{repo: repo, log: logger.Named("catalog_uc")}
}

// WithImageResolver resolves bucket-relative image paths (optional).
func (u *CatalogUsecase) WithImageResolver(r ImageResolver) *CatalogUsecase {
	u.images = r
	return u
}

func (u *CatalogUsecase) List(ctx context.Context) ([]productdom.Product, error) {
	items, err := u.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	for i := range items {
		items[i].ImageURL = u.resolve(ctx, items[i].ImageURL)
	}
	return items, nil
}

// Get returns product.ErrNotFound for unknown ids.
func (u *CatalogUsecase) Get(ctx context.Context, id productdom.ID) (productdom.Product, error) {
	id = id.Normalize()
	if id.IsZero() {
		return productdom.Product{}, productdom.ErrNotFound
	}
	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return productdom.Product{}, err
	}
	p.ImageURL = u.resolve(ctx, p.ImageURL)
	return p, nil
}

// Ref looks a product up and returns what the cart needs from it.
func (u *CatalogUsecase) Ref(ctx context.Context, id productdom.ID) (cartdom.ProductRef, error) {
	p, err := u.Get(ctx, id)
	if err != nil {
		return cartdom.ProductRef{}, err
	}
	return cartdom.RefFromProduct(p), nil
}

// Seed upserts every product and returns how many were written.
func (u *CatalogUsecase) Seed(ctx context.Context, products []productdom.Product) (int, error) {
	n := 0
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return n, fmt.Errorf("catalog: seed %q: %w", p.ID, err)
		}
		if err := u.repo.Upsert(ctx, p); err != nil {
			return n, fmt.Errorf("catalog: seed %q: %w", p.ID, err)
		}
		n++
	}
	u.log.Info("catalogue seeded", zap.Int("count", n))
	return n, nil
}

func (u *CatalogUsecase) resolve(ctx context.Context, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || u.images == nil || isAbsoluteURL(path) {
		return path
	}
	url, err := u.images.ResolveImageURL(ctx, path)
	if err != nil {
		u.log.Warn("image url not resolved", zap.String("path", path), zap.Error(err))
		return path
	}
	return url
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "/") ||
		strings.HasPrefix(s, "data:")
}
