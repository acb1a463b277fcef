// internal/infra/secrets/secret_provider_sm.go
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrNotConfigured  = errors.New("secrets: provider not configured")
	ErrSecretNotFound = errors.New("secrets: secret not found")
	ErrEmptyPayload   = errors.New("secrets: empty payload")
)

// VersionAccessor is the subset of *secretmanager.Client the provider needs.
type VersionAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// ProviderSM reads API keys (Stripe, SendGrid, Cargo Expreso) from Secret Manager.
type ProviderSM struct {
	sm        VersionAccessor
	projectID string
	version   string
}

func NewProviderSM(sm VersionAccessor, projectID string) *ProviderSM {
	return &ProviderSM{sm: sm, projectID: strings.TrimSpace(projectID), version: "latest"}
}

// Get returns the trimmed payload of projects/<p>/secrets/<name>/versions/latest.
func (p *ProviderSM) Get(ctx context.Context, name string) (string, error) {
	if p == nil || p.sm == nil || p.projectID == "" {
		return "", ErrNotConfigured
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty secret name", ErrSecretNotFound)
	}

	full := fmt.Sprintf("projects/%s/secrets/%s/versions/%s", p.projectID, name, p.version)
	resp, err := p.sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: full})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, full)
		}
		return "", fmt.Errorf("secrets: access %s: %w", full, err)
	}
	if resp == nil || resp.Payload == nil {
		return "", fmt.Errorf("%w: %s", ErrEmptyPayload, full)
	}
	v := strings.TrimSpace(string(resp.Payload.Data))
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyPayload, full)
	}
	return v, nil
}

// Fill sets *dst from the secret when *dst is empty and name is set.
func (p *ProviderSM) Fill(ctx context.Context, dst *string, name string) error {
	if dst == nil || strings.TrimSpace(*dst) != "" || strings.TrimSpace(name) == "" {
		return nil
	}
	v, err := p.Get(ctx, name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
