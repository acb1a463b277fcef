// internal/infra/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	common "modaorganica/internal/domain/common"
	courierdom "modaorganica/internal/domain/courier"
	shippingdom "modaorganica/internal/domain/shipping"
)

// EnvConfigPath names the YAML file when --config is not given.
const EnvConfigPath = "MALL_CONFIG"

var ErrInvalidConfig = errors.New("config: invalid")

// Config はアプリケーション全体の設定を保持します（YAML → 環境変数の順で上書き）。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	GCP      GCPConfig      `yaml:"gcp"`
	Shipping ShippingConfig `yaml:"shipping"`
	Payment  PaymentConfig  `yaml:"payment"`
	Mail     MailConfig     `yaml:"mail"`
	Courier  CourierConfig  `yaml:"courier"`
	Client   ClientConfig   `yaml:"client"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	FrontendURL     string        `yaml:"frontendUrl"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
	CheckoutTimeout time.Duration `yaml:"checkoutTimeout"`
	SessionIdle     time.Duration `yaml:"sessionIdle"`
	SweepInterval   time.Duration `yaml:"sweepInterval"`
	SecureCookies   bool          `yaml:"secureCookies"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// StorageConfig selects where products, orders and carts live.
// Backend: "sqlite" (default), "postgres" or "firestore".
type StorageConfig struct {
	Backend     string `yaml:"backend"`
	DatabaseURL string `yaml:"databaseUrl"`
	SQLitePath  string `yaml:"sqlitePath"`
}

type GCPConfig struct {
	ProjectID          string        `yaml:"projectId"`
	FirestoreProjectID string        `yaml:"firestoreProjectId"`
	FirebaseProjectID  string        `yaml:"firebaseProjectId"`
	CredentialsFile    string        `yaml:"credentialsFile"`
	ImageBucket        string        `yaml:"imageBucket"`
	SignedURLTTL       time.Duration `yaml:"signedUrlTtl"`
	EnableFirebaseAuth bool          `yaml:"enableFirebaseAuth"`
}

// ShippingConfig mirrors shipping.Rules with plain YAML values.
type ShippingConfig struct {
	LocalZones       []string `yaml:"localZones"`
	LocalCost        string   `yaml:"localCost"`
	NationalCost     string   `yaml:"nationalCost"`
	NationalProvider string   `yaml:"nationalProvider"`
}

// PaymentConfig: Provider "mock" (default) or "stripe".
type PaymentConfig struct {
	Provider         string `yaml:"provider"`
	Currency         string `yaml:"currency"`
	StripeSecretKey  string `yaml:"-"`
	StripeSecretName string `yaml:"stripeSecretName"`
}

type MailConfig struct {
	From               string `yaml:"from"`
	FromName           string `yaml:"fromName"`
	SendGridAPIKey     string `yaml:"-"`
	SendGridSecretName string `yaml:"sendgridSecretName"`
}

// CourierConfig: Mode "mock" (default), "webhook" or "off".
type CourierConfig struct {
	Mode          string `yaml:"mode"`
	WebhookURL    string `yaml:"webhookUrl"`
	APIKey        string `yaml:"-"`
	SenderName    string `yaml:"senderName"`
	SenderPhone   string `yaml:"senderPhone"`
	SenderAddress string `yaml:"senderAddress"`
	SenderCity    string `yaml:"senderCity"`
}

// ClientConfig is used by the CLI when it talks to a running server.
type ClientConfig struct {
	APIBaseURL string        `yaml:"apiBaseUrl"`
	Timeout    time.Duration `yaml:"timeout"`
	CartDB     string        `yaml:"cartDb"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file or env is present.
func Default() *Config {
	def := shippingdom.DefaultRules()
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			FrontendURL:     "http://localhost:5173",
			CheckoutTimeout: 15 * time.Second,
			SessionIdle:     30 * time.Minute,
			SweepInterval:   time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{Backend: "sqlite", SQLitePath: "modaorganica.db"},
		Shipping: ShippingConfig{
			LocalZones:       def.LocalZones,
			LocalCost:        def.Costs.Local.String(),
			NationalCost:     def.Costs.National.String(),
			NationalProvider: def.NationalProvider,
		},
		Payment: PaymentConfig{Provider: "mock", Currency: "gtq"},
		Mail:    MailConfig{FromName: "Moda Orgánica"},
		Courier: CourierConfig{Mode: "mock"},
		Client:  ClientConfig{APIBaseURL: "http://localhost:8080", Timeout: 15 * time.Second, CartDB: "cart.db"},
		Log:     LogConfig{Level: "info"},
	}
}

// Path resolves the config file path: explicit flag, then MALL_CONFIG.
func Path(flag string) string {
	if p := strings.TrimSpace(flag); p != "" {
		return p
	}
	return strings.TrimSpace(os.Getenv(EnvConfigPath))
}

// Load reads defaults, then the YAML file at path (if any), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getenvDefault("PORT", c.Server.Port)
	c.Server.FrontendURL = getenvDefault("FRONTEND_URL", c.Server.FrontendURL)

	defaultProject := getenvDefault("GCP_PROJECT_ID", c.GCP.ProjectID)
	c.GCP.ProjectID = defaultProject
	c.GCP.FirestoreProjectID = getenvDefault("FIRESTORE_PROJECT_ID", firstNonEmpty(c.GCP.FirestoreProjectID, defaultProject))
	c.GCP.FirebaseProjectID = getenvDefault("FIREBASE_PROJECT_ID", firstNonEmpty(c.GCP.FirebaseProjectID, defaultProject))
	c.GCP.CredentialsFile = getenvDefault("GOOGLE_APPLICATION_CREDENTIALS", c.GCP.CredentialsFile)
	c.GCP.ImageBucket = getenvDefault("IMAGE_BUCKET", c.GCP.ImageBucket)

	c.Storage.Backend = getenvDefault("STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.DatabaseURL = getenvDefault("DATABASE_URL", c.Storage.DatabaseURL)
	c.Storage.SQLitePath = getenvDefault("SQLITE_PATH", c.Storage.SQLitePath)

	c.Payment.StripeSecretKey = getenvDefault("STRIPE_SECRET_KEY", c.Payment.StripeSecretKey)
	c.Payment.Provider = getenvDefault("PAYMENT_PROVIDER", c.Payment.Provider)

	c.Mail.SendGridAPIKey = getenvDefault("SENDGRID_API_KEY", c.Mail.SendGridAPIKey)
	c.Mail.From = getenvDefault("SENDGRID_FROM", c.Mail.From)

	c.Courier.Mode = getenvDefault("CARGO_EXPRESO_MODE", c.Courier.Mode)
	c.Courier.WebhookURL = getenvDefault("CARGO_EXPRESO_WEBHOOK_URL", c.Courier.WebhookURL)
	c.Courier.APIKey = getenvDefault("CARGO_EXPRESO_API_KEY", c.Courier.APIKey)
	c.Courier.SenderName = getenvDefault("CARGO_EXPRESO_SENDER_NAME", c.Courier.SenderName)
	c.Courier.SenderPhone = getenvDefault("CARGO_EXPRESO_SENDER_PHONE", c.Courier.SenderPhone)
	c.Courier.SenderAddress = getenvDefault("CARGO_EXPRESO_SENDER_ADDRESS", c.Courier.SenderAddress)
	c.Courier.SenderCity = getenvDefault("CARGO_EXPRESO_SENDER_CITY", c.Courier.SenderCity)

	c.Client.APIBaseURL = getenvDefault("API_BASE_URL", c.Client.APIBaseURL)

	c.Log.Level = getenvDefault("LOG_LEVEL", c.Log.Level)
	if v, err := strconv.ParseBool(os.Getenv("LOG_DEVELOPMENT")); err == nil {
		c.Log.Development = v
	}
}

// Validate checks the enumerations and the shipping table.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "sqlite", "postgres", "firestore":
	default:
		return fmt.Errorf("%w: storage.backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	if c.Storage.Backend == "postgres" && strings.TrimSpace(c.Storage.DatabaseURL) == "" {
		return fmt.Errorf("%w: storage.databaseUrl is required for postgres", ErrInvalidConfig)
	}
	switch c.Payment.Provider {
	case "mock", "stripe":
	default:
		return fmt.Errorf("%w: payment.provider %q", ErrInvalidConfig, c.Payment.Provider)
	}
	switch c.Courier.Mode {
	case "mock", "webhook", "off":
	default:
		return fmt.Errorf("%w: courier.mode %q", ErrInvalidConfig, c.Courier.Mode)
	}
	if _, err := c.Shipping.Rules(); err != nil {
		return err
	}
	return nil
}

// Rules converts the YAML shipping section.
func (s ShippingConfig) Rules() (shippingdom.Rules, error) {
	local, err := common.ParseMoney(s.LocalCost)
	if err != nil {
		return shippingdom.Rules{}, fmt.Errorf("%w: shipping.localCost: %v", ErrInvalidConfig, err)
	}
	national, err := common.ParseMoney(s.NationalCost)
	if err != nil {
		return shippingdom.Rules{}, fmt.Errorf("%w: shipping.nationalCost: %v", ErrInvalidConfig, err)
	}
	r := shippingdom.Rules{
		LocalZones:       s.LocalZones,
		Costs:            shippingdom.Costs{Local: local, National: national},
		NationalProvider: s.NationalProvider,
	}
	if err := r.Validate(); err != nil {
		return shippingdom.Rules{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return r, nil
}

// Sender is the courier sender party.
func (c CourierConfig) Sender() courierdom.Party {
	return courierdom.Party{
		Name:    c.SenderName,
		Phone:   c.SenderPhone,
		Address: c.SenderAddress,
		City:    c.SenderCity,
	}
}

// Origins is the CORS allow list: the configured origins plus the frontend URL.
func (s ServerConfig) Origins() []string {
	out := append([]string{}, s.AllowedOrigins...)
	if f := strings.TrimSpace(s.FrontendURL); f != "" {
		out = append(out, f)
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
