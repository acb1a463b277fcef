// internal/adapters/out/http/storefront_client.go
package httpout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	checkoutdom "modaorganica/internal/domain/checkout"
	paymentdom "modaorganica/internal/domain/payment"
	productdom "modaorganica/internal/domain/product"
)

// StorefrontClient calls the mall backend API.
// Transport failures come back as *checkout.NetworkError, non-2xx answers as *checkout.BackendError.
type StorefrontClient struct {
	baseURL string
	client  *http.Client
}

// baseURL example:
// - Cloud Run: https://xxxxx.us-central1.run.app
// - local: http://localhost:8080
func NewStorefrontClient(baseURL string, timeout time.Duration) *StorefrontClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &StorefrontClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *StorefrontClient) ListProducts(ctx context.Context) ([]productdom.Product, error) {
	var out []productdom.Product
	if err := c.do(ctx, "list-products", http.MethodGet, "/api/v1/products", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []productdom.Product{}
	}
	return out, nil
}

// GetProduct maps 404 to product.ErrNotFound.
func (c *StorefrontClient) GetProduct(ctx context.Context, id productdom.ID) (productdom.Product, error) {
	var out productdom.Product
	err := c.do(ctx, "get-product", http.MethodGet, "/api/v1/products/"+url.PathEscape(id.Normalize().String()), nil, &out)
	var be *checkoutdom.BackendError
	if errors.As(err, &be) && be.Status == http.StatusNotFound {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return out, err
}

// CreateCheckoutSession implements usecase.CheckoutGateway.
func (c *StorefrontClient) CreateCheckoutSession(ctx context.Context, req paymentdom.CheckoutSessionRequest) (paymentdom.CheckoutSessionResponse, error) {
	var out paymentdom.CheckoutSessionResponse
	if err := c.do(ctx, "create-checkout-session", http.MethodPost, "/api/v1/payments/create-checkout-session", req, &out); err != nil {
		return paymentdom.CheckoutSessionResponse{}, err
	}
	if strings.TrimSpace(out.CheckoutURL) == "" || strings.TrimSpace(out.SessionID) == "" {
		return paymentdom.CheckoutSessionResponse{}, &checkoutdom.BackendError{Status: http.StatusOK, Message: "respuesta incompleta del servidor de pagos"}
	}
	return out, nil
}

func (c *StorefrontClient) do(ctx context.Context, op, method, path string, in, out any) error {
	if c == nil || c.baseURL == "" {
		return &checkoutdom.NetworkError{Op: op, Err: errors.New("storefront client baseURL is empty")}
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("storefront: marshal %s: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &checkoutdom.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return &checkoutdom.NetworkError{Op: op, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return &checkoutdom.NetworkError{Op: op, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &checkoutdom.BackendError{Status: res.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &checkoutdom.BackendError{Status: res.StatusCode, Message: ""}
	}
	return nil
}

// errorMessage extracts {"error": "..."} (or {"message": "..."}) from an error body.
func errorMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if m := strings.TrimSpace(body.Error); m != "" {
		return m
	}
	return strings.TrimSpace(body.Message)
}
