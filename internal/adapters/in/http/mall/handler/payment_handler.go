// internal/adapters/in/http/mall/handler/payment_handler.go
package mallHandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"modaorganica/internal/adapters/in/http/middleware"
	orderdom "modaorganica/internal/domain/order"
	paymentdom "modaorganica/internal/domain/payment"
)

// PaymentService is implemented by usecase.PaymentUsecase.
type PaymentService interface {
	CreateCheckoutSession(ctx context.Context, req paymentdom.CheckoutSessionRequest) (paymentdom.CheckoutSessionResponse, error)
	ConfirmSession(ctx context.Context, sessionID string) (orderdom.Order, error)
}

// PaymentHandler handles:
// - POST /api/v1/payments/create-checkout-session
// - POST /api/v1/payments/confirm {session_id}
type PaymentHandler struct {
	uc  PaymentService
	log *zap.Logger
}

func NewPaymentHandler(uc PaymentService, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentHandler{uc: uc, log: logger.Named("mall_payment_handler")}
}

func (h *PaymentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "payment handler is not configured")
		return
	}

	switch rest := trimPrefixPath(r.URL.Path, "/api/v1/payments"); {
	case rest == "create-checkout-session" && r.Method == http.MethodPost:
		h.create(w, r)
	case rest == "confirm" && r.Method == http.MethodPost:
		h.confirm(w, r)
	case rest == "create-checkout-session" || rest == "confirm":
		methodNotAllowed(w)
	default:
		notFound(w)
	}
}

func (h *PaymentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req paymentdom.CheckoutSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "Datos inválidos: "+err.Error())
		return
	}
	req.UserID, _ = middleware.CurrentUserUID(r)

	res, err := h.uc.CreateCheckoutSession(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, paymentdom.ErrInvalidRequest):
		writeErr(w, http.StatusBadRequest, "Datos inválidos: "+strings.TrimPrefix(err.Error(), paymentdom.ErrInvalidRequest.Error()+": "))
	default:
		h.log.Error("create checkout session failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Error creando sesión de pago")
	}
}

func (h *PaymentHandler) confirm(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "Datos inválidos: "+err.Error())
		return
	}
	if strings.TrimSpace(body.SessionID) == "" {
		writeErr(w, http.StatusBadRequest, "session_id is required")
		return
	}

	o, err := h.uc.ConfirmSession(r.Context(), body.SessionID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, o)
	case errors.Is(err, paymentdom.ErrSessionNotFound), errors.Is(err, orderdom.ErrNotFound):
		writeErr(w, http.StatusNotFound, "session not found")
	case errors.Is(err, paymentdom.ErrNotPaid):
		writeErr(w, http.StatusPaymentRequired, "payment not completed")
	default:
		h.log.Error("confirm session failed", zap.String("sessionId", body.SessionID), zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Error confirmando pago")
	}
}
