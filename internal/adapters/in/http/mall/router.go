// internal/adapters/in/http/mall/router.go
package mall

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Deps is the buyer-facing (mall) handler set.
type Deps struct {
	Products  http.Handler
	Locations http.Handler
	Payments  http.Handler
	Orders    http.Handler

	// AdminOrders is expected to be wrapped in middleware.RequireAdmin already.
	AdminOrders http.Handler

	Cart     http.Handler
	Checkout http.Handler
}

// handleSafe registers pattern (and its subtree) with h.
// If h is nil, it logs and registers NotFoundHandler instead (so Cloud Run won't crash).
func handleSafe(r chi.Router, pattern string, h http.Handler, name string, log *zap.Logger) {
	if h == nil {
		log.Warn("nil handler, registering NotFoundHandler", zap.String("handler", name), zap.String("pattern", pattern))
		h = http.NotFoundHandler()
	}
	r.Handle(pattern, h)
	r.Handle(pattern+"/*", h)
}

// Register registers buyer-facing routes onto r.
func Register(r chi.Router, deps Deps, logger *zap.Logger) {
	if r == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("mall.router")

	// backend API
	handleSafe(r, "/api/v1/products", deps.Products, "Products", log)
	handleSafe(r, "/api/v1/locations", deps.Locations, "Locations", log)
	handleSafe(r, "/api/v1/payments", deps.Payments, "Payments", log)
	handleSafe(r, "/api/v1/orders", deps.Orders, "Orders", log)
	handleSafe(r, "/api/v1/admin/orders", deps.AdminOrders, "AdminOrders", log)

	// storefront
	handleSafe(r, "/cart", deps.Cart, "Cart", log)
	handleSafe(r, "/checkout", deps.Checkout, "Checkout", log)
}
