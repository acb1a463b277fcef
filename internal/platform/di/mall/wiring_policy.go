// internal/platform/di/mall/wiring_policy.go
package mall

import (
	"fmt"

	"go.uber.org/zap"

	courierout "modaorganica/internal/adapters/out/courier"
	dbout "modaorganica/internal/adapters/out/db"
	outfs "modaorganica/internal/adapters/out/firestore"
	gcso "modaorganica/internal/adapters/out/gcs"
	mailout "modaorganica/internal/adapters/out/mail"
	paymentout "modaorganica/internal/adapters/out/payment"
	usecase "modaorganica/internal/application/usecase"
	cartdom "modaorganica/internal/domain/cart"
	courierdom "modaorganica/internal/domain/courier"
	orderdom "modaorganica/internal/domain/order"
	paymentdom "modaorganica/internal/domain/payment"
	productdom "modaorganica/internal/domain/product"
	shared "modaorganica/internal/platform/di/shared"
)

// repos is the persistence set chosen by storage.backend.
type repos struct {
	Products   productdom.Repository
	Orders     orderdom.Repository
	CartStates cartdom.StateRepository
}

// buildRepos: firestore when the Firestore client is set, otherwise SQL.
func buildRepos(infra *shared.Infra) (repos, error) {
	switch {
	case infra.Firestore != nil:
		c := infra.Firestore.Client
		return repos{
			Products:   outfs.NewProductRepositoryFS(c),
			Orders:     outfs.NewOrderRepositoryFS(c),
			CartStates: outfs.NewCartStateRepositoryFS(c),
		}, nil
	case infra.DB != nil:
		db, d := infra.DB.Client, infra.DB.Dialect
		return repos{
			Products:   dbout.NewProductRepositorySQL(db, d),
			Orders:     dbout.NewOrderRepositorySQL(db, d),
			CartStates: dbout.NewCartStateRepositorySQL(db, d),
		}, nil
	default:
		return repos{}, fmt.Errorf("di.mall: no storage backend initialized")
	}
}

func buildPaymentProvider(s shared.RuntimeSettings) (paymentdom.SessionProvider, error) {
	if s.PaymentProvider == "stripe" {
		return paymentout.NewStripeProvider(s.StripeSecretKey, nil)
	}
	return paymentout.NewMockProvider(), nil
}

// buildCourier returns nil when courier.mode is off.
func buildCourier(s shared.RuntimeSettings) courierdom.GuideService {
	switch s.CourierMode {
	case "webhook":
		return courierout.NewWebhookGuideClient(s.CourierWebhookURL, s.CourierAPIKey)
	case "off":
		return nil
	default:
		return courierout.NewMockGuideService()
	}
}

// buildMailer returns nil when SendGrid is not configured.
func buildMailer(s shared.RuntimeSettings, logger *zap.Logger) usecase.OrderMailer {
	if !s.MailEnabled {
		return nil
	}
	client := mailout.NewSendGridClient(s.SendGridAPIKey, s.MailFromName, logger)
	return mailout.NewOrderMailer(client, s.MailFrom, s.FrontendURL)
}

// buildImageResolver returns nil when no bucket is configured.
func buildImageResolver(infra *shared.Infra) usecase.ImageResolver {
	s := infra.Settings
	if s.ImageBucket == "" {
		return nil
	}
	return gcso.NewProductImageResolver(s.ImageBucket, infra.GCS, s.SignedURLTTL)
}
