// internal/adapters/out/courier/webhook_guide_client.go
package courierout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	common "modaorganica/internal/domain/common"
	courierdom "modaorganica/internal/domain/courier"
)

// WebhookGuideClient creates guides through the automation webhook that drives Cargo Expreso.
type WebhookGuideClient struct {
	webhookURL string
	apiKey     string
	client     *http.Client
}

// guideWire is the flat body the webhook expects.
type guideWire struct {
	SenderName    string `json:"sender_name"`
	SenderPhone   string `json:"sender_phone"`
	SenderAddress string `json:"sender_address"`
	SenderCity    string `json:"sender_city"`

	RecipientName    string `json:"recipient_name"`
	RecipientPhone   string `json:"recipient_phone"`
	RecipientAddress string `json:"recipient_address"`
	RecipientCity    string `json:"recipient_city"`

	OrderID       string  `json:"order_id"`
	PackageType   string  `json:"package_type"`
	Weight        float64 `json:"weight"`
	DeclaredValue float64 `json:"declared_value"`
	Notes         string  `json:"notes"`

	DeliveryType string `json:"delivery_type"`
	PickupBranch string `json:"pickup_branch,omitempty"`
}

type guideResponseWire struct {
	Success        bool    `json:"success"`
	TrackingNumber string  `json:"tracking_number"`
	GuideURL       string  `json:"guide_url"`
	EstimatedDays  int     `json:"estimated_days"`
	Cost           float64 `json:"cost"`
	ErrorMessage   string  `json:"error_message,omitempty"`
}

func NewWebhookGuideClient(webhookURL, apiKey string) *WebhookGuideClient {
	return &WebhookGuideClient{
		webhookURL: strings.TrimSpace(webhookURL),
		apiKey:     strings.TrimSpace(apiKey),
		// the webhook drives a browser session on the courier site
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *WebhookGuideClient) CreateGuide(ctx context.Context, req courierdom.GuideRequest) (courierdom.Guide, error) {
	if c == nil || c.webhookURL == "" {
		return courierdom.Guide{}, fmt.Errorf("courier webhook url is empty")
	}
	if !req.Sender.Complete() {
		return courierdom.Guide{}, courierdom.ErrSenderIncomplete
	}

	b, err := json.Marshal(toWire(req))
	if err != nil {
		return courierdom.Guide{}, fmt.Errorf("courier: marshal request: %w", err)
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(b))
	if err != nil {
		return courierdom.Guide{}, err
	}
	hreq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		hreq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.client.Do(hreq)
	if err != nil {
		return courierdom.Guide{}, fmt.Errorf("courier: call webhook: %w", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if res.StatusCode != http.StatusOK {
		return courierdom.Guide{}, fmt.Errorf("courier webhook failed status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out guideResponseWire
	if err := json.Unmarshal(body, &out); err != nil {
		return courierdom.Guide{}, fmt.Errorf("courier: parse response: %w", err)
	}
	if !out.Success || strings.TrimSpace(out.TrackingNumber) == "" {
		return courierdom.Guide{}, fmt.Errorf("%w: %s", courierdom.ErrGuideRejected, out.ErrorMessage)
	}
	return courierdom.Guide{
		TrackingNumber: out.TrackingNumber,
		GuideURL:       out.GuideURL,
		EstimatedDays:  out.EstimatedDays,
		Cost:           common.NewMoney(out.Cost),
	}, nil
}

// Tracking is not offered by the webhook yet.
func (c *WebhookGuideClient) Tracking(ctx context.Context, trackingNumber string) (courierdom.TrackingInfo, error) {
	return courierdom.TrackingInfo{}, fmt.Errorf("courier: tracking not available for %s", strings.TrimSpace(trackingNumber))
}

func toWire(req courierdom.GuideRequest) guideWire {
	return guideWire{
		SenderName:       req.Sender.Name,
		SenderPhone:      req.Sender.Phone,
		SenderAddress:    req.Sender.Address,
		SenderCity:       req.Sender.City,
		RecipientName:    req.Recipient.Name,
		RecipientPhone:   req.Recipient.Phone,
		RecipientAddress: req.Recipient.Address,
		RecipientCity:    req.Recipient.City,
		OrderID:          req.OrderID,
		PackageType:      req.PackageType,
		Weight:           req.WeightLb,
		DeclaredValue:    req.DeclaredValue.Float64(),
		Notes:            req.Notes,
		DeliveryType:     req.DeliveryType,
		PickupBranch:     req.PickupBranch,
	}
}
