// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CartStateRepositoryFS implements cart.StateRepository using Firestore.
//
// Collection design:
// - collection: carts
// - docId: storage key ("cart", "cart:<session>", "cart:<uid>")
// - fields: state (serialized cart), updatedAt, expiresAt
//
// TTL:
// - Configure Firestore TTL on "expiresAt".
type CartStateRepositoryFS struct {
	Client *firestore.Client
	TTL    time.Duration
}

func NewCartStateRepositoryFS(client *firestore.Client) *CartStateRepositoryFS {
	return &CartStateRepositoryFS{Client: client, TTL: 30 * 24 * time.Hour}
}

type cartStateDoc struct {
	State     string    `firestore:"state"`
	UpdatedAt time.Time `firestore:"updatedAt"`
	ExpiresAt time.Time `firestore:"expiresAt"`
}

func (r *CartStateRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

func (r *CartStateRepositoryFS) doc(key string) (*firestore.DocumentRef, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}
	k := strings.TrimSpace(key)
	if k == "" || strings.Contains(k, "/") {
		return nil, errors.New("cart_repository_fs: invalid key")
	}
	return r.col().Doc(k), nil
}

// Load returns (nil, nil) if not found.
func (r *CartStateRepositoryFS) Load(ctx context.Context, key string) ([]byte, error) {
	ref, err := r.doc(key)
	if err != nil {
		return nil, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	// 過去の doc に state が無い場合は空カート扱い
	v, _ := snap.Data()["state"].(string)
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	return []byte(v), nil
}

// Save overwrites the full doc.
func (r *CartStateRepositoryFS) Save(ctx context.Context, key string, raw []byte) error {
	ref, err := r.doc(key)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = ref.Set(ctx, cartStateDoc{
		State:     string(raw),
		UpdatedAt: now,
		ExpiresAt: now.Add(r.TTL),
	})
	return err
}

func (r *CartStateRepositoryFS) Delete(ctx context.Context, key string) error {
	ref, err := r.doc(key)
	if err != nil {
		return err
	}
	_, err = ref.Delete(ctx)
	if status.Code(err) == codes.NotFound {
		return nil
	}
	return err
}
