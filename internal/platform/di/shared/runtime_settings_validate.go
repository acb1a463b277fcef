// internal/platform/di/shared/runtime_settings_validate.go
package shared

import (
	"fmt"
	"strings"
)

// Validate performs hard validation for RuntimeSettings.
//
// Policy:
//   - Fail fast for values that would cause undefined behavior at request time.
//   - Optional features remain disabled when their settings are empty.
func (s RuntimeSettings) Validate() error {
	if !isHTTPBase(s.FrontendURL) {
		return fmt.Errorf("shared.runtime_settings: FrontendURL must start with http:// or https:// (got %q)", s.FrontendURL)
	}

	if s.PaymentProvider == "stripe" && s.StripeSecretKey == "" {
		return fmt.Errorf("shared.runtime_settings: payment provider stripe needs STRIPE_SECRET_KEY or payment.stripeSecretName")
	}

	if s.CourierMode == "webhook" && !isHTTPBase(s.CourierWebhookURL) {
		return fmt.Errorf("shared.runtime_settings: courier webhook mode needs CARGO_EXPRESO_WEBHOOK_URL (got %q)", s.CourierWebhookURL)
	}

	// GCS bucket names cannot contain whitespace or slashes.
	if strings.ContainsAny(s.ImageBucket, " \t\r\n/") {
		return fmt.Errorf("shared.runtime_settings: ImageBucket is not a bucket name (got %q)", s.ImageBucket)
	}
	if s.SignedURLTTL < 0 {
		return fmt.Errorf("shared.runtime_settings: SignedURLTTL is negative")
	}

	return nil
}

func isHTTPBase(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
