// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"modaorganica/internal/adapters/in/http/mall"
	"modaorganica/internal/adapters/in/http/middleware"
)

// RouterDeps collects the handlers and middleware settings injected from the container.
type RouterDeps struct {
	Mall mall.Deps

	// Auth verifies optional buyer ID tokens; nil keeps every request anonymous.
	Auth *middleware.BuyerAuth

	// AllowedOrigins for CORS (storefront URLs).
	AllowedOrigins []string

	Logger *zap.Logger
}

// NewRouter sets up HTTP routing for the mall.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestLog(logger))
	r.Use(middleware.CORS(deps.AllowedOrigins))
	if deps.Auth != nil {
		r.Use(deps.Auth.Handler)
	}

	// Health check (always on)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mall.Register(r, deps.Mall, logger)
	return r
}
