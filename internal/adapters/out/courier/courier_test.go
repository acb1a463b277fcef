package courierout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "modaorganica/internal/domain/common"
	courierdom "modaorganica/internal/domain/courier"
)

func guideRequest() courierdom.GuideRequest {
	return courierdom.GuideRequest{
		Sender:        courierdom.Party{Name: "Moda Orgánica", Phone: "5555-0000", Address: "6a avenida 1-10 zona 10", City: "Guatemala"},
		Recipient:     courierdom.Party{Name: "Ana", Phone: "5555-1234", Address: "3a calle 4-20", City: "Cobán"},
		OrderID:       "ord-1",
		PackageType:   "caja_pequeña",
		WeightLb:      1,
		DeclaredValue: common.MustParseMoney("200.50"),
		DeliveryType:  "home_delivery",
	}
}

func TestMockGuideService(t *testing.T) {
	fixed := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	s := NewMockGuideService().WithClock(func() time.Time { return fixed })
	ctx := context.Background()

	g, err := s.CreateGuide(ctx, guideRequest())
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^CE-2026-\d{6}$`), g.TrackingNumber)
	assert.Equal(t, "https://storage.example.com/guides/"+g.TrackingNumber+".pdf", g.GuideURL)
	assert.Equal(t, "36.00", g.Cost.String())

	info, err := s.Tracking(ctx, g.TrackingNumber)
	require.NoError(t, err)
	assert.Equal(t, "in_transit", info.Status)
	assert.Equal(t, fixed.Add(-2*time.Hour), info.LastUpdate)

	req := guideRequest()
	req.Sender.Phone = ""
	_, err = s.CreateGuide(ctx, req)
	assert.ErrorIs(t, err, courierdom.ErrSenderIncomplete)
}

func TestWebhookGuideClient_CreateGuide(t *testing.T) {
	var got guideWire
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(guideResponseWire{
			Success: true, TrackingNumber: "CE-2026-123456", GuideURL: "https://g/1.pdf", EstimatedDays: 4, Cost: 36,
		})
	}))
	defer srv.Close()

	g, err := NewWebhookGuideClient(srv.URL, "secret").CreateGuide(context.Background(), guideRequest())
	require.NoError(t, err)
	assert.Equal(t, "CE-2026-123456", g.TrackingNumber)
	assert.Equal(t, 4, g.EstimatedDays)
	assert.Equal(t, "36.00", g.Cost.String())

	assert.Equal(t, "Moda Orgánica", got.SenderName)
	assert.Equal(t, "Cobán", got.RecipientCity)
	assert.InDelta(t, 200.50, got.DeclaredValue, 0.001)
}

func TestWebhookGuideClient_Failures(t *testing.T) {
	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error_message":"municipio sin cobertura"}`))
	}))
	defer rejecting.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer broken.Close()

	ctx := context.Background()

	_, err := NewWebhookGuideClient(rejecting.URL, "").CreateGuide(ctx, guideRequest())
	assert.ErrorIs(t, err, courierdom.ErrGuideRejected)
	assert.Contains(t, err.Error(), "sin cobertura")

	_, err = NewWebhookGuideClient(broken.URL, "").CreateGuide(ctx, guideRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=502")

	_, err = NewWebhookGuideClient("", "").CreateGuide(ctx, guideRequest())
	assert.Error(t, err)

	_, err = NewWebhookGuideClient(broken.URL, "").Tracking(ctx, "CE-1")
	assert.Error(t, err)
}
