package secrets

import (
	"context"
	"testing"

	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeSM struct {
	data  map[string]string
	calls []string
}

func (f *fakeSM) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.calls = append(f.calls, req.GetName())
	v, ok := f.data[req.GetName()]
	if !ok {
		return nil, status.Error(codes.NotFound, "no such secret")
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(v)},
	}, nil
}

func TestProviderSM_Get(t *testing.T) {
	sm := &fakeSM{data: map[string]string{
		"projects/mo-prod/secrets/stripe-secret-key/versions/latest": " sk_live_123\n",
		"projects/mo-prod/secrets/blank/versions/latest":             "  ",
	}}
	p := NewProviderSM(sm, "mo-prod")
	ctx := context.Background()

	v, err := p.Get(ctx, "stripe-secret-key")
	require.NoError(t, err)
	assert.Equal(t, "sk_live_123", v)

	_, err = p.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	_, err = p.Get(ctx, "blank")
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestProviderSM_Fill(t *testing.T) {
	sm := &fakeSM{data: map[string]string{
		"projects/p/secrets/sendgrid/versions/latest": "SG.key",
	}}
	p := NewProviderSM(sm, "p")
	ctx := context.Background()

	explicit := "from-env"
	require.NoError(t, p.Fill(ctx, &explicit, "sendgrid"))
	assert.Equal(t, "from-env", explicit)
	assert.Empty(t, sm.calls)

	var empty string
	require.NoError(t, p.Fill(ctx, &empty, "sendgrid"))
	assert.Equal(t, "SG.key", empty)

	var unnamed string
	require.NoError(t, p.Fill(ctx, &unnamed, ""))
	assert.Empty(t, unnamed)
}

func TestProviderSM_NotConfigured(t *testing.T) {
	var p *ProviderSM
	_, err := p.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewProviderSM(nil, "p").Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
