package gcs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gcscommon "modaorganica/internal/adapters/out/gcs/common"
)

func TestProductImageResolver_PublicURLs(t *testing.T) {
	r := NewProductImageResolver("mo-images", nil, 0)
	ctx := context.Background()

	cases := map[string]string{
		"products/anillo plata.jpg":                    "https://storage.googleapis.com/mo-images/products/anillo%20plata.jpg",
		"/products/collar.jpg":                         "https://storage.googleapis.com/mo-images/products/collar.jpg",
		"gs://other/a.png":                             "https://storage.googleapis.com/other/a.png",
		"https://storage.cloud.google.com/other/b.png": "https://storage.googleapis.com/other/b.png",
		"https://cdn.example/collar.jpg":               "https://cdn.example/collar.jpg",
	}
	for in, want := range cases {
		got, err := r.ResolveImageURL(ctx, in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := r.ResolveImageURL(ctx, " ")
	assert.Error(t, err)
}

func TestProductImageResolver_DefaultBucket(t *testing.T) {
	got, err := NewProductImageResolver("", nil, 0).ResolveImageURL(context.Background(), "x.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/"+defaultProductImageBucket+"/x.jpg", got)
}

func TestParseGCSURL(t *testing.T) {
	b, o, ok := gcscommon.ParseGCSURL("https://storage.googleapis.com/bkt/dir/a%20b.jpg")
	require.True(t, ok)
	assert.Equal(t, "bkt", b)
	assert.Equal(t, "dir/a b.jpg", o)

	_, _, ok = gcscommon.ParseGCSURL("https://storage.googleapis.com/bkt")
	assert.False(t, ok)
	_, _, ok = gcscommon.ParseGCSURL("https://example.com/bkt/a.jpg")
	assert.False(t, ok)
}
