// internal/adapters/in/http/mall/handler/product_handler.go
package mallHandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	productdom "modaorganica/internal/domain/product"
)

// ProductReader is the read side of the catalogue (usecase.CatalogUsecase).
type ProductReader interface {
	List(ctx context.Context) ([]productdom.Product, error)
	Get(ctx context.Context, id productdom.ID) (productdom.Product, error)
}

// ProductHandler serves:
// - GET /api/v1/products
// - GET /api/v1/products/{id}
type ProductHandler struct {
	uc  ProductReader
	log *zap.Logger
}

func NewProductHandler(uc ProductReader, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{uc: uc, log: logger.Named("mall_product_handler")}
}

func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "product handler is not configured")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	rest := trimPrefixPath(r.URL.Path, "/api/v1/products")
	switch {
	case rest == "":
		h.list(w, r)
	case !strings.Contains(rest, "/"):
		h.get(w, r, productdom.ID(rest))
	default:
		notFound(w)
	}
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.uc.List(r.Context())
	if err != nil {
		h.log.Error("list products failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Error obteniendo productos")
		return
	}
	if items == nil {
		items = []productdom.Product{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request, id productdom.ID) {
	p, err := h.uc.Get(r.Context(), id)
	if errors.Is(err, productdom.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		h.log.Error("get product failed", zap.String("id", id.String()), zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Error obteniendo producto")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
