package mail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "modaorganica/internal/domain/common"
	orderdom "modaorganica/internal/domain/order"
	productdom "modaorganica/internal/domain/product"
)

type capturedMail struct {
	from, to, subject, body string
}

type fakeClient struct{ sent []capturedMail }

func (f *fakeClient) Send(_ context.Context, from, to, subject, body string) error {
	f.sent = append(f.sent, capturedMail{from, to, subject, body})
	return nil
}

func paidOrder() orderdom.Order {
	o, _ := orderdom.New("0f8e1c2a-aaaa-bbbb-cccc-000000000001", orderdom.Order{
		CustomerEmail: "ana@example.com",
		CustomerName:  "Ana",
		Shipping: orderdom.Shipping{
			Department: "Alta Verapaz", Municipality: "Cobán", Address: "3a calle 4-20 zona 1",
			DeliveryType: "home_delivery",
		},
		ShippingMethod: "Cargo Expreso",
		ShippingCost:   common.MustParseMoney("36"),
		Items: []orderdom.Item{
			{ProductID: productdom.ID("p1"), ProductName: "Collar", Quantity: 2, Price: common.MustParseMoney("100")},
		},
	}, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	return o
}

func TestOrderMailer_SendOrderConfirmation(t *testing.T) {
	fc := &fakeClient{}
	m := NewOrderMailer(fc, "ventas@modaorganica.gt", "https://modaorganica.gt/")

	require.NoError(t, m.SendOrderConfirmation(context.Background(), paidOrder()))
	require.Len(t, fc.sent, 1)

	got := fc.sent[0]
	assert.Equal(t, "ventas@modaorganica.gt", got.from)
	assert.Equal(t, "ana@example.com", got.to)
	assert.Contains(t, got.subject, "0f8e1c2a")
	assert.Contains(t, got.body, "2 x Collar  Q200.00")
	assert.Contains(t, got.body, "Envío: Q36.00")
	assert.Contains(t, got.body, "Total: Q236.00")
	assert.Contains(t, got.body, "Cobán, Alta Verapaz")
	assert.Contains(t, got.body, "https://modaorganica.gt/orders/0f8e1c2a-aaaa-bbbb-cccc-000000000001")
}

func TestOrderMailer_Unconfigured(t *testing.T) {
	var m *OrderMailer
	assert.Error(t, m.SendOrderConfirmation(context.Background(), paidOrder()))
}

func TestSendGridClient_Send(t *testing.T) {
	var payload map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &payload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewSendGridClient("SG.test", "", nil).WithHost(srv.URL)
	require.NoError(t, c.Send(context.Background(), "ventas@modaorganica.gt", "ana@example.com", "Hola", "a < b"))

	assert.Equal(t, "Bearer SG.test", auth)
	assert.Equal(t, "Hola", payload["subject"])
	from := payload["from"].(map[string]any)
	assert.Equal(t, "Moda Orgánica", from["name"])
}

func TestSendGridClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	assert.Error(t, NewSendGridClient("", "", nil).Send(ctx, "a@x", "b@x", "s", "b"))
	assert.Error(t, NewSendGridClient("k", "", nil).Send(ctx, "", "b@x", "s", "b"))
	assert.Error(t, NewSendGridClient("k", "", nil).Send(ctx, "a@x", "", "s", "b"))

	err := NewSendGridClient("k", "", nil).WithHost(srv.URL).Send(ctx, "a@x", "b@x", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a***@example.com", maskEmail("ana@example.com"))
	assert.Equal(t, "***", maskEmail("no-at-sign"))
	assert.Equal(t, "***", maskEmail("@example.com"))
}
