// internal/adapters/in/http/mall/handler/cart_handler.go
package mallHandler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	usecase "modaorganica/internal/application/usecase"
	cartdom "modaorganica/internal/domain/cart"
	productdom "modaorganica/internal/domain/product"
)

// ProductRefs looks products up for the cart (usecase.CatalogUsecase).
type ProductRefs interface {
	Ref(ctx context.Context, id productdom.ID) (cartdom.ProductRef, error)
}

// CartHandler serves the storefront cart:
// - GET    /cart
// - DELETE /cart
// - POST   /cart/items        {id, quantity}
// - PUT    /cart/items/{id}   {quantity}
// - DELETE /cart/items/{id}
type CartHandler struct {
	sessions *SessionResolver
	products ProductRefs
	log      *zap.Logger
}

func NewCartHandler(sessions *SessionResolver, products ProductRefs, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{sessions: sessions, products: products, log: logger.Named("mall_cart_handler")}
}

// cartView is the cart as the storefront renders it.
type cartView struct {
	cartdom.Cart
	UnitCount int `json:"unitCount"`
}

func viewOf(c cartdom.Cart) cartView {
	return cartView{Cart: c, UnitCount: c.UnitCount()}
}

type cartItemRequest struct {
	ID       productdom.ID `json:"id"`
	Quantity int           `json:"quantity"`
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sess, err := h.sessions.Resolve(w, r)
	if err != nil {
		h.log.Error("session unavailable", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}
	store := sess.Store
	ctx := r.Context()

	rest := trimPrefixPath(r.URL.Path, "/cart")
	var itemID productdom.ID
	if id, ok := strings.CutPrefix(rest, "items/"); ok && id != "" && !strings.Contains(id, "/") {
		itemID = productdom.ID(id)
		rest = "items/{id}"
	}

	switch {
	case rest == "" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, viewOf(store.GetCart()))

	case rest == "" && r.Method == http.MethodDelete:
		writeJSON(w, http.StatusOK, viewOf(store.Clear(ctx)))

	case rest == "items" && r.Method == http.MethodPost:
		h.addItem(w, r, store)

	case rest == "items/{id}" && r.Method == http.MethodPut:
		var body cartItemRequest
		if err := decodeJSON(r, &body); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		writeJSON(w, http.StatusOK, viewOf(store.UpdateQuantity(ctx, itemID, body.Quantity)))

	case rest == "items/{id}" && r.Method == http.MethodDelete:
		writeJSON(w, http.StatusOK, viewOf(store.RemoveProduct(ctx, itemID)))

	case rest == "" || rest == "items" || rest == "items/{id}":
		methodNotAllowed(w)

	default:
		notFound(w)
	}

	h.log.Debug("cart request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("session", sess.ID),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request, store *usecase.CartStore) {
	if h.products == nil {
		writeErr(w, http.StatusInternalServerError, "catalogue is not configured")
		return
	}
	var body cartItemRequest
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.ID.IsZero() {
		writeErr(w, http.StatusBadRequest, "id is required")
		return
	}

	ref, err := h.products.Ref(r.Context(), body.ID)
	if errors.Is(err, productdom.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		h.log.Error("product lookup failed", zap.String("id", body.ID.String()), zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Error obteniendo producto")
		return
	}

	c, err := store.AddProduct(r.Context(), ref, body.Quantity)
	if errors.Is(err, cartdom.ErrInvalidCart) {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, viewOf(c))
}
