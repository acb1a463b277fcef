// internal/platform/di/mall/register.go
package mall

import (
	"encoding/json"
	"net/http"

	httpin "modaorganica/internal/adapters/in/http"
	mallhttp "modaorganica/internal/adapters/in/http/mall"
	mallhandler "modaorganica/internal/adapters/in/http/mall/handler"
	"modaorganica/internal/adapters/in/http/middleware"
)

// notImplemented returns a non-nil handler (so deps are never nil) for endpoints
// whose usecase is not wired.
func notImplemented(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotImplemented)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "not_implemented",
			"name":  name,
		})
	})
}

// Handler constructs the mall handlers and the full router.
// Pure DI: no method/path branching here.
func Handler(cont *Container) http.Handler {
	if cont == nil {
		return httpin.NewRouter(httpin.RouterDeps{})
	}
	logger := cont.Log
	log := logger.Named("mall.register")

	deps := mallhttp.Deps{
		Products:  notImplemented("Products"),
		Locations: mallhandler.NewLocationHandler(cont.Locations),
		Payments:  notImplemented("Payments"),
		Orders:    notImplemented("Orders"),
		Cart:      notImplemented("Cart"),
		Checkout:  notImplemented("Checkout"),
	}

	if cont.CatalogUC != nil {
		deps.Products = mallhandler.NewProductHandler(cont.CatalogUC, logger)
	}
	if cont.PaymentUC != nil {
		deps.Payments = mallhandler.NewPaymentHandler(cont.PaymentUC, logger)
		deps.Orders = mallhandler.NewOrderHandler(cont.PaymentUC, logger)
	}
	if cont.OrderAdminUC != nil {
		// without Firebase Auth there is no admin token, so this always answers 401
		admin := middleware.RequireAdmin(logger)
		deps.AdminOrders = admin(mallhandler.NewAdminOrderHandler(cont.OrderAdminUC, logger))
	} else {
		deps.AdminOrders = notImplemented("AdminOrders")
	}

	if cont.Sessions != nil && cont.CatalogUC != nil {
		cookie := cont.Infra.Config.Server
		resolver := &mallhandler.SessionResolver{
			Sessions:     cont.Sessions,
			SecureCookie: cookie.SecureCookies,
		}
		deps.Cart = mallhandler.NewCartHandler(resolver, cont.CatalogUC, logger)

		co := mallhandler.NewCheckoutHandler(resolver, cont.Locations, logger)
		if cont.PaymentUC != nil {
			co.WithConfirmer(cont.PaymentUC)
		}
		deps.Checkout = co
	}

	// Buyer auth (optional): anonymous when Firebase Auth is not initialized.
	var auth *middleware.BuyerAuth
	if cont.Infra.FirebaseAuth != nil {
		auth = &middleware.BuyerAuth{Verifier: cont.Infra.FirebaseAuth, Log: logger}
	} else {
		log.Info("firebase auth not initialized; storefront sessions are cookie-only")
	}

	return httpin.NewRouter(httpin.RouterDeps{
		Mall:           deps,
		Auth:           auth,
		AllowedOrigins: cont.Infra.Config.Server.Origins(),
		Logger:         logger,
	})
}
