// internal/adapters/out/mail/sendgrid_client.go
package mail

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const defaultSendGridHost = "https://api.sendgrid.com"

// EmailClient は実際のメール送信クライアント（SendGrid / テスト用 fake）を抽象化したものです。
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// SendGridClient implements EmailClient.
type SendGridClient struct {
	apiKey   string
	host     string
	fromName string
	log      *zap.Logger
}

func NewSendGridClient(apiKey, fromName string, logger *zap.Logger) *SendGridClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(fromName) == "" {
		fromName = "Moda Orgánica"
	}
	return &SendGridClient{
		apiKey:   strings.TrimSpace(apiKey),
		host:     defaultSendGridHost,
		fromName: fromName,
		log:      logger.Named("sendgrid"),
	}
}

// WithHost points the client at another API host (tests).
func (c *SendGridClient) WithHost(host string) *SendGridClient {
	if h := strings.TrimRight(strings.TrimSpace(host), "/"); h != "" {
		c.host = h
	}
	return c
}

// Send sends an email using SendGrid
func (c *SendGridClient) Send(ctx context.Context, from, to, subject, body string) error {
	if c.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if from == "" {
		return fmt.Errorf("from address is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(c.fromName, from),
		subject,
		sgmail.NewEmail("", to),
		body,
		fmt.Sprintf("<pre>%s</pre>", html.EscapeString(body)),
	)

	req := sendgrid.GetRequest(c.apiKey, "/v3/mail/send", c.host)
	req.Method = rest.Post
	req.Body = sgmail.GetRequestBody(message)

	res, err := rest.SendWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if res.StatusCode >= 400 {
		c.log.Warn("send failed", zap.Int("status", res.StatusCode), zap.String("body", res.Body))
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", res.StatusCode, res.Body)
	}

	c.log.Info("mail sent", zap.Int("status", res.StatusCode), zap.String("to", maskEmail(to)), zap.String("subject", subject))
	return nil
}

// avoid logging raw addresses: "ana@example.com" -> "a***@example.com"
func maskEmail(addr string) string {
	addr = strings.TrimSpace(addr)
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return "***"
	}
	return addr[:1] + "***" + addr[at:]
}
