// internal/adapters/in/http/mall/handler/checkout_handler.go
package mallHandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	usecase "modaorganica/internal/application/usecase"
	checkoutdom "modaorganica/internal/domain/checkout"
	locationdom "modaorganica/internal/domain/location"
	orderdom "modaorganica/internal/domain/order"
)

// SessionConfirmer marks the order of a returning session as paid (usecase.PaymentUsecase).
type SessionConfirmer interface {
	ConfirmSession(ctx context.Context, sessionID string) (orderdom.Order, error)
}

// CheckoutHandler serves the storefront checkout routes:
// - GET  /checkout            view model (cart, totals, state, departments)
// - GET  /checkout/quote      totals for ?department=&municipality=
// - POST /checkout            submit the form
// - GET  /checkout/success    ?session_id=... clears the cart
// - GET  /checkout/cancel     keeps the cart
type CheckoutHandler struct {
	sessions  *SessionResolver
	locs      *locationdom.Catalogue
	confirmer SessionConfirmer
	log       *zap.Logger
}

func NewCheckoutHandler(sessions *SessionResolver, locs *locationdom.Catalogue, logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{sessions: sessions, locs: locs, log: logger.Named("mall_checkout_handler")}
}

// WithConfirmer confirms payment server-side when the buyer lands on the success route (optional).
func (h *CheckoutHandler) WithConfirmer(c SessionConfirmer) *CheckoutHandler {
	h.confirmer = c
	return h
}

type checkoutView struct {
	Cart        cartView                 `json:"cart"`
	Totals      usecase.Totals           `json:"totals"`
	State       checkoutdom.State        `json:"state"`
	Departments []locationdom.Department `json:"departments,omitempty"`
}

type submitErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Resolve(w, r)
	if err != nil {
		h.log.Error("session unavailable", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "checkout handler is not configured")
		return
	}
	co := sess.Checkout

	rest := trimPrefixPath(r.URL.Path, "/checkout")
	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.applyLocation(co, r)
		v := checkoutView{
			Cart:   viewOf(sess.Store.GetCart()),
			Totals: co.Totals(),
			State:  co.State(),
		}
		if h.locs != nil {
			v.Departments = h.locs.Departments()
		}
		writeJSON(w, http.StatusOK, v)

	case rest == "" && r.Method == http.MethodPost:
		h.submit(w, r, co)

	case rest == "quote" && r.Method == http.MethodGet:
		h.applyLocation(co, r)
		writeJSON(w, http.StatusOK, co.Totals())

	case rest == "success" && r.Method == http.MethodGet:
		h.success(w, r, sess)

	case rest == "cancel" && r.Method == http.MethodGet:
		c := co.HandleCancel(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"cart":    viewOf(c),
			"message": "Pago cancelado. Tu carrito se conservó.",
		})

	case rest == "" || rest == "quote" || rest == "success" || rest == "cancel":
		methodNotAllowed(w)

	default:
		notFound(w)
	}
}

func (h *CheckoutHandler) applyLocation(co *usecase.CheckoutCoordinator, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("department") && !q.Has("municipality") {
		return
	}
	co.SetLocation(q.Get("department"), q.Get("municipality"))
}

func (h *CheckoutHandler) submit(w http.ResponseWriter, r *http.Request, co *usecase.CheckoutCoordinator) {
	var form checkoutdom.Form
	if err := decodeJSON(r, &form); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	res, err := co.Submit(r.Context(), form)
	if err == nil {
		writeJSON(w, http.StatusOK, res)
		return
	}

	body := submitErrorBody{Error: co.UserMessage(err)}
	var ve *checkoutdom.ValidationError
	var ne *checkoutdom.NetworkError
	var be *checkoutdom.BackendError
	switch {
	case errors.As(err, &ve):
		body.Fields = ve.Fields
		writeJSON(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, checkoutdom.ErrSubmitInProgress):
		writeJSON(w, http.StatusConflict, body)
	case errors.Is(err, checkoutdom.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, body)
	case errors.As(err, &ne), errors.As(err, &be):
		writeJSON(w, http.StatusBadGateway, body)
	default:
		h.log.Error("checkout submit failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, body)
	}
}

func (h *CheckoutHandler) success(w http.ResponseWriter, r *http.Request, sess *usecase.StorefrontSession) {
	sid := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sid == "" {
		writeErr(w, http.StatusBadRequest, checkoutdom.MsgMissingSession)
		return
	}

	resp := map[string]any{}
	if h.confirmer != nil {
		o, err := h.confirmer.ConfirmSession(r.Context(), sid)
		if err != nil {
			// the cart is cleared regardless; the order can be confirmed again later
			h.log.Warn("payment confirmation failed", zap.String("sessionId", sid), zap.Error(err))
		} else {
			resp["order"] = o
		}
	}

	conf, err := sess.Checkout.HandleSuccess(r.Context(), sid)
	if err != nil {
		writeErr(w, http.StatusBadRequest, checkoutdom.UserMessage(err))
		return
	}
	if o, ok := resp["order"].(orderdom.Order); ok && conf.OrderID == "" {
		conf.OrderID = o.ID
	}
	resp["session_id"] = conf.SessionID
	resp["order_id"] = conf.OrderID
	resp["cart"] = viewOf(sess.Store.GetCart())
	resp["message"] = "¡Gracias por tu compra!"
	writeJSON(w, http.StatusOK, resp)
}
