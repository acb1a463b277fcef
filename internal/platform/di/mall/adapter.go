// internal/platform/di/mall/adapter.go
package mall

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"modaorganica/internal/adapters/in/http/middleware"
	usecase "modaorganica/internal/application/usecase"
	checkoutdom "modaorganica/internal/domain/checkout"
	paymentdom "modaorganica/internal/domain/payment"
)

// inProcessGateway lets the storefront sessions call the payment usecase
// directly instead of going through HTTP. Errors are translated into the
// same shapes the HTTP client (httpout.StorefrontClient) produces so the
// checkout banner reads the same either way.
type inProcessGateway struct {
	uc *usecase.PaymentUsecase
}

var _ usecase.CheckoutGateway = inProcessGateway{}

func (g inProcessGateway) CreateCheckoutSession(ctx context.Context, req paymentdom.CheckoutSessionRequest) (paymentdom.CheckoutSessionResponse, error) {
	if g.uc == nil {
		return paymentdom.CheckoutSessionResponse{}, &checkoutdom.BackendError{Status: http.StatusServiceUnavailable}
	}
	if req.UserID == "" {
		req.UserID = middleware.UIDFromContext(ctx)
	}
	res, err := g.uc.CreateCheckoutSession(ctx, req)
	if err == nil {
		return res, nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return res, &checkoutdom.NetworkError{Op: "create-checkout-session", Err: err}
	case errors.Is(err, paymentdom.ErrInvalidRequest):
		msg := strings.TrimPrefix(err.Error(), paymentdom.ErrInvalidRequest.Error()+": ")
		return res, &checkoutdom.BackendError{Status: http.StatusBadRequest, Message: "Datos inválidos: " + msg}
	default:
		return res, &checkoutdom.BackendError{Status: http.StatusInternalServerError, Message: "Error creando sesión de pago"}
	}
}
