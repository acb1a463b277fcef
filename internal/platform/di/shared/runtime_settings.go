// internal/platform/di/shared/runtime_settings.go
package shared

import (
	"errors"
	"strings"
	"time"

	courierdom "modaorganica/internal/domain/courier"
	appcfg "modaorganica/internal/infra/config"
)

// RuntimeSettings is config-resolved runtime settings (normalized once).
// It intentionally contains only "values" (no external clients).
//
// Policy:
// - Keep normalization (trim, trailing slash removal) here.
// - Optional features are disabled with a warning when their settings are empty.
// - Keep hard validation in runtime_settings_validate.go.
type RuntimeSettings struct {
	FrontendURL string
	Currency    string

	FirestoreProjectID string
	FirebaseProjectID  string

	ImageBucket  string
	SignedURLTTL time.Duration

	PaymentProvider string
	StripeSecretKey string

	MailEnabled    bool
	MailFrom       string
	MailFromName   string
	SendGridAPIKey string

	CourierMode       string
	CourierWebhookURL string
	CourierAPIKey     string
	Sender            courierdom.Party
}

// ResolveRuntimeSettings resolves and normalizes runtime settings from cfg.
//
// Notes:
// - This function is side-effect free (no logging).
// - It returns warnings as strings so callers can decide how to surface them.
func ResolveRuntimeSettings(cfg *appcfg.Config) (RuntimeSettings, []string, error) {
	if cfg == nil {
		return RuntimeSettings{}, nil, errors.New("shared.runtime_settings: cfg is nil")
	}

	var warns []string
	s := RuntimeSettings{
		FrontendURL:        normalizeBaseURL(cfg.Server.FrontendURL),
		Currency:           strings.ToLower(strings.TrimSpace(cfg.Payment.Currency)),
		FirestoreProjectID: firstNonEmpty(cfg.GCP.FirestoreProjectID, cfg.GCP.ProjectID),
		FirebaseProjectID:  firstNonEmpty(cfg.GCP.FirebaseProjectID, cfg.GCP.ProjectID),
		ImageBucket:        strings.TrimSpace(cfg.GCP.ImageBucket),
		SignedURLTTL:       cfg.GCP.SignedURLTTL,
		PaymentProvider:    cfg.Payment.Provider,
		StripeSecretKey:    strings.TrimSpace(cfg.Payment.StripeSecretKey),
		MailFrom:           strings.TrimSpace(cfg.Mail.From),
		MailFromName:       strings.TrimSpace(cfg.Mail.FromName),
		SendGridAPIKey:     strings.TrimSpace(cfg.Mail.SendGridAPIKey),
		CourierMode:        cfg.Courier.Mode,
		CourierWebhookURL:  normalizeBaseURL(cfg.Courier.WebhookURL),
		CourierAPIKey:      strings.TrimSpace(cfg.Courier.APIKey),
		Sender:             cfg.Courier.Sender(),
	}

	if s.Currency == "" {
		s.Currency = "gtq"
	}

	if s.ImageBucket == "" {
		warns = append(warns, "IMAGE_BUCKET is empty (relative product image paths are served as-is)")
	}

	s.MailEnabled = s.SendGridAPIKey != "" && s.MailFrom != ""
	if !s.MailEnabled {
		warns = append(warns, "SENDGRID_API_KEY/SENDGRID_FROM is empty (order confirmation email disabled)")
	}

	if s.CourierMode != "off" && !s.Sender.Complete() {
		warns = append(warns, "CARGO_EXPRESO_SENDER_* is incomplete (shipping guides will be rejected)")
	}

	if s.PaymentProvider == "mock" {
		warns = append(warns, "payment provider is mock (sessions are reported paid without charging)")
	}

	if err := s.Validate(); err != nil {
		return RuntimeSettings{}, warns, err
	}
	return s, warns, nil
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func normalizeBaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	return strings.TrimRight(u, "/")
}
