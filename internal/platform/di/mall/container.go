// internal/platform/di/mall/container.go
package mall

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	usecase "modaorganica/internal/application/usecase"
	locationdom "modaorganica/internal/domain/location"
	shippingdom "modaorganica/internal/domain/shipping"
	shared "modaorganica/internal/platform/di/shared"
)

// Container is Mall DI container.
// Pure DI: build deps only. Routing lives in register.go.
type Container struct {
	Infra *shared.Infra
	Log   *zap.Logger

	// Live shipping rules (swapped by config.Watcher)
	Shipping  *shippingdom.Table
	Locations *locationdom.Catalogue

	repos repos

	// Usecases
	CatalogUC *usecase.CatalogUsecase
	PaymentUC *usecase.PaymentUsecase
	Sessions  *usecase.StorefrontSessions

	OrderAdminUC *usecase.OrderAdminUsecase
}

// NewContainer wires repositories, adapters and usecases on top of infra.
func NewContainer(ctx context.Context, infra *shared.Infra) (*Container, error) {
	if infra == nil || infra.Config == nil {
		return nil, errors.New("di.mall: infra is nil")
	}
	logger := infra.Log
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := infra.Config
	s := infra.Settings

	rules, err := cfg.Shipping.Rules()
	if err != nil {
		return nil, fmt.Errorf("di.mall: %w", err)
	}

	c := &Container{
		Infra:     infra,
		Log:       logger,
		Shipping:  shippingdom.NewTable(rules),
		Locations: locationdom.Guatemala(),
	}

	// ------------------------------------------------------------
	// Repositories
	// ------------------------------------------------------------
	c.repos, err = buildRepos(infra)
	if err != nil {
		return nil, err
	}
	if infra.Firestore != nil {
		if err := infra.Firestore.Ping(ctx); err != nil {
			logger.Named("di.mall").Warn("firestore ping failed", zap.Error(err))
		}
	}

	// ------------------------------------------------------------
	// Outbound adapters
	// ------------------------------------------------------------
	provider, err := buildPaymentProvider(s)
	if err != nil {
		return nil, fmt.Errorf("di.mall: payment provider: %w", err)
	}

	// ------------------------------------------------------------
	// Usecases
	// ------------------------------------------------------------
	c.CatalogUC = usecase.NewCatalogUsecase(c.repos.Products, logger)
	if r := buildImageResolver(infra); r != nil {
		c.CatalogUC.WithImageResolver(r)
	}

	c.PaymentUC = usecase.NewPaymentUsecase(
		c.repos.Products,
		c.repos.Orders,
		provider,
		c.Shipping,
		usecase.PaymentConfig{
			FrontendURL: s.FrontendURL,
			Currency:    s.Currency,
			Sender:      s.Sender,
		},
		logger,
	)
	if m := buildMailer(s, logger); m != nil {
		c.PaymentUC.WithMailer(m)
	}
	if g := buildCourier(s); g != nil {
		c.PaymentUC.WithCourier(g)
	}

	c.OrderAdminUC = usecase.NewOrderAdminUsecase(c.repos.Orders, logger)

	c.Sessions = usecase.NewStorefrontSessions(
		c.repos.CartStates,
		inProcessGateway{uc: c.PaymentUC},
		c.Shipping,
		c.Locations,
		logger,
	).WithTimeout(cfg.Server.CheckoutTimeout).WithIdle(cfg.Server.SessionIdle)

	logger.Named("di.mall").Info("container ready",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("payment", s.PaymentProvider),
		zap.String("courier", s.CourierMode),
		zap.Bool("mail", s.MailEnabled),
	)
	return c, nil
}

// Close releases the shared infra owned by this container.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	return c.Infra.Close()
}
