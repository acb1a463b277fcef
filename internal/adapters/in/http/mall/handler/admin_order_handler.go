// internal/adapters/in/http/mall/handler/admin_order_handler.go
package mallHandler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	orderdom "modaorganica/internal/domain/order"
)

// OrderAdmin is implemented by usecase.OrderAdminUsecase.
type OrderAdmin interface {
	List(ctx context.Context, f orderdom.ListFilter) (orderdom.Page, error)
	Get(ctx context.Context, id string) (orderdom.Order, error)
	Stats(ctx context.Context) (orderdom.Stats, error)
	Map(ctx context.Context, municipality string, status orderdom.Status) ([]orderdom.MapPoint, error)
	UpdateStatus(ctx context.Context, id string, next orderdom.Status) (orderdom.Order, error)
}

// AdminOrderHandler は管理画面向けの注文 API を担当します（認可は middleware.RequireAdmin 側）。
// - GET /api/v1/admin/orders?status=&municipality=&limit=&offset=
// - GET /api/v1/admin/orders/stats
// - GET /api/v1/admin/orders/map?municipality=&status=
// - GET /api/v1/admin/orders/{id}
// - PUT /api/v1/admin/orders/{id}/status {status}
type AdminOrderHandler struct {
	uc  OrderAdmin
	log *zap.Logger
}

func NewAdminOrderHandler(uc OrderAdmin, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminOrderHandler{uc: uc, log: logger.Named("admin_order_handler")}
}

func (h *AdminOrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "admin order handler is not configured")
		return
	}

	rest := trimPrefixPath(r.URL.Path, "/api/v1/admin/orders")
	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		switch rest {
		case "":
			h.list(w, r)
		case "stats":
			h.stats(w, r)
		case "map":
			h.mapPoints(w, r)
		default:
			h.get(w, r, rest)
		}
	case len(parts) == 2 && parts[0] != "" && parts[1] == "status":
		if r.Method != http.MethodPut && r.Method != http.MethodPatch {
			methodNotAllowed(w)
			return
		}
		h.updateStatus(w, r, parts[0])
	default:
		notFound(w)
	}
}

func (h *AdminOrderHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, ok := statusParam(w, q.Get("status"))
	if !ok {
		return
	}
	page, err := h.uc.List(r.Context(), orderdom.ListFilter{
		Status:       status,
		Municipality: q.Get("municipality"),
		Limit:        intParam(q.Get("limit")),
		Offset:       intParam(q.Get("offset")),
	})
	if err != nil {
		h.log.Error("list orders failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Error obteniendo órdenes")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *AdminOrderHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	o, err := h.uc.Get(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, o)
	case errors.Is(err, orderdom.ErrNotFound):
		writeErr(w, http.StatusNotFound, "order not found")
	default:
		h.log.Error("get order failed", zap.String("orderId", id), zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Error obteniendo orden")
	}
}

func (h *AdminOrderHandler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.uc.Stats(r.Context())
	if err != nil {
		h.log.Error("order stats failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Error obteniendo estadísticas")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *AdminOrderHandler) mapPoints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, ok := statusParam(w, q.Get("status"))
	if !ok {
		return
	}
	points, err := h.uc.Map(r.Context(), q.Get("municipality"), status)
	if err != nil {
		h.log.Error("order map failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Error obteniendo mapa de órdenes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": points, "count": len(points)})
}

func (h *AdminOrderHandler) updateStatus(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "Datos inválidos: "+err.Error())
		return
	}
	next, err := orderdom.ParseStatus(body.Status)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "status inválido: "+body.Status)
		return
	}

	o, err := h.uc.UpdateStatus(r.Context(), id, next)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, o)
	case errors.Is(err, orderdom.ErrNotFound):
		writeErr(w, http.StatusNotFound, "order not found")
	case errors.Is(err, orderdom.ErrInvalidStatus):
		writeErr(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("update order status failed", zap.String("orderId", id), zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Error actualizando orden")
	}
}

// statusParam: empty means any; an unknown value answers 400.
func statusParam(w http.ResponseWriter, v string) (orderdom.Status, bool) {
	if strings.TrimSpace(v) == "" {
		return "", true
	}
	st, err := orderdom.ParseStatus(v)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "status inválido: "+v)
		return "", false
	}
	return st, true
}

// intParam returns 0 for junk; ListFilter.Normalize applies the defaults.
func intParam(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}
