// internal/adapters/in/http/mall/handler/order_handler.go
package mallHandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"modaorganica/internal/adapters/in/http/middleware"
	courierdom "modaorganica/internal/domain/courier"
	orderdom "modaorganica/internal/domain/order"
)

// OrderReader is implemented by usecase.PaymentUsecase.
type OrderReader interface {
	GetOrder(ctx context.Context, id string) (orderdom.Order, error)
	Tracking(ctx context.Context, orderID string) (courierdom.TrackingInfo, error)
}

// OrderHandler は /api/v1/orders 関連のエンドポイントを担当します。
// - GET /api/v1/orders/{id}          (本人・管理者以外には連絡先を伏せた版を返す)
// - GET /api/v1/orders/{id}/tracking
type OrderHandler struct {
	uc  OrderReader
	log *zap.Logger
}

func NewOrderHandler(uc OrderReader, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{uc: uc, log: logger.Named("mall_order_handler")}
}

func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "order handler is not configured")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	parts := strings.Split(trimPrefixPath(r.URL.Path, "/api/v1/orders"), "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		h.get(w, r, parts[0])
	case len(parts) == 2 && parts[0] != "" && parts[1] == "tracking":
		h.tracking(w, r, parts[0])
	default:
		notFound(w)
	}
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	o, err := h.uc.GetOrder(r.Context(), id)
	if errors.Is(err, orderdom.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		h.log.Error("get order failed", zap.String("orderId", id), zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Error obteniendo orden")
		return
	}
	if !canSeeBuyer(r, o) {
		o = o.Redacted()
	}
	writeJSON(w, http.StatusOK, o)
}

// canSeeBuyer: the signed-in buyer who placed the order, or an admin.
func canSeeBuyer(r *http.Request, o orderdom.Order) bool {
	if middleware.IsAdmin(r) {
		return true
	}
	uid, ok := middleware.CurrentUserUID(r)
	return ok && o.UserID != "" && uid == o.UserID
}

func (h *OrderHandler) tracking(w http.ResponseWriter, r *http.Request, id string) {
	info, err := h.uc.Tracking(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, info)
	case errors.Is(err, orderdom.ErrNotFound):
		writeErr(w, http.StatusNotFound, "order not found")
	case errors.Is(err, orderdom.ErrInvalidStatus):
		writeErr(w, http.StatusConflict, "order has no shipment yet")
	default:
		h.log.Warn("tracking failed", zap.String("orderId", id), zap.Error(err))
		writeErr(w, http.StatusBadGateway, "Error consultando rastreo")
	}
}
