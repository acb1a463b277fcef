// internal/adapters/out/gcs/product_image_resolver.go
package gcs

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	gcscommon "modaorganica/internal/adapters/out/gcs/common"
)

const defaultProductImageBucket = "modaorganica-products"

// ProductImageResolver resolves stored product image paths for catalogue responses.
//
// stored path can be:
// - http(s)://... (returned as-is by the catalogue before reaching here)
// - gs://bucket/object or https://storage.googleapis.com/... (parsed)
// - objectPath (treated as object path within bucket)
//
// With a storage client and SignedTTL > 0 the resolver returns V4 signed URLs
// (private bucket); otherwise public URLs.
type ProductImageResolver struct {
	Bucket    string
	Client    *storage.Client
	SignedTTL time.Duration
}

func NewProductImageResolver(bucket string, client *storage.Client, signedTTL time.Duration) *ProductImageResolver {
	return &ProductImageResolver{Bucket: strings.TrimSpace(bucket), Client: client, SignedTTL: signedTTL}
}

func (r *ProductImageResolver) ResolveImageURL(ctx context.Context, stored string) (string, error) {
	p := strings.TrimSpace(stored)
	if p == "" {
		return "", errors.New("gcs: empty image path")
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		if _, _, ok := gcscommon.ParseGCSURL(p); !ok {
			return p, nil
		}
	}

	bucket, obj, ok := gcscommon.ParseGCSURL(p)
	if !ok {
		bucket, obj = r.bucket(), strings.TrimLeft(p, "/")
	}

	if r.Client != nil && r.SignedTTL > 0 {
		return r.Client.Bucket(bucket).SignedURL(obj, &storage.SignedURLOptions{
			Scheme:  storage.SigningSchemeV4,
			Method:  "GET",
			Expires: time.Now().Add(r.SignedTTL),
		})
	}
	return gcscommon.GCSPublicURL(bucket, obj, defaultProductImageBucket), nil
}

func (r *ProductImageResolver) bucket() string {
	if b := strings.TrimSpace(r.Bucket); b != "" {
		return b
	}
	return defaultProductImageBucket
}

// Exists reports whether the object behind stored is present in the bucket.
func (r *ProductImageResolver) Exists(ctx context.Context, stored string) (bool, error) {
	if r.Client == nil {
		return false, errors.New("gcs: storage client is nil")
	}
	bucket, obj, ok := gcscommon.ParseGCSURL(stored)
	if !ok {
		bucket, obj = r.bucket(), strings.TrimLeft(strings.TrimSpace(stored), "/")
	}
	_, err := r.Client.Bucket(bucket).Object(obj).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return err == nil, err
}
