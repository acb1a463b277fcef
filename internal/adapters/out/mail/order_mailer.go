// internal/adapters/out/mail/order_mailer.go
package mail

import (
	"context"
	"fmt"
	"strings"

	orderdom "modaorganica/internal/domain/order"
)

// OrderMailer sends the order confirmation after payment.
type OrderMailer struct {
	client      EmailClient
	fromAddress string
	frontendURL string
}

func NewOrderMailer(client EmailClient, fromAddress, frontendURL string) *OrderMailer {
	return &OrderMailer{
		client:      client,
		fromAddress: strings.TrimSpace(fromAddress),
		frontendURL: strings.TrimRight(strings.TrimSpace(frontendURL), "/"),
	}
}

func (m *OrderMailer) SendOrderConfirmation(ctx context.Context, o orderdom.Order) error {
	if m == nil || m.client == nil {
		return fmt.Errorf("order mailer is not configured")
	}
	subject := fmt.Sprintf("Moda Orgánica - Confirmación de pedido %s", shortID(o.ID))
	return m.client.Send(ctx, m.fromAddress, strings.TrimSpace(o.CustomerEmail), subject, m.body(o))
}

func (m *OrderMailer) body(o orderdom.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n", o.CustomerName)
	b.WriteString("¡Gracias por tu compra! Recibimos tu pago y estamos preparando tu pedido.\n\n")
	fmt.Fprintf(&b, "Pedido: %s\n\n", o.ID)

	for _, it := range o.Items {
		fmt.Fprintf(&b, "  %d x %s  %s\n", it.Quantity, it.ProductName, it.LineTotal().Display())
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", o.Subtotal.Display())
	if o.ShippingCost.IsZero() {
		b.WriteString("Envío: Gratis\n")
	} else {
		fmt.Fprintf(&b, "Envío: %s\n", o.ShippingCost.Display())
	}
	fmt.Fprintf(&b, "Total: %s\n\n", o.Total.Display())

	if o.Shipping.DeliveryType == "pickup_at_branch" {
		fmt.Fprintf(&b, "Recoger en sucursal: %s (%s)\n", o.Shipping.PickupBranch, o.Shipping.Municipality)
	} else {
		fmt.Fprintf(&b, "Dirección de entrega: %s, %s, %s\n", o.Shipping.Address, o.Shipping.Municipality, o.Shipping.Department)
	}
	if o.ShippingMethod != "" {
		fmt.Fprintf(&b, "Método de envío: %s\n", o.ShippingMethod)
	}
	if m.frontendURL != "" {
		fmt.Fprintf(&b, "\nSeguimiento: %s/orders/%s\n", m.frontendURL, o.ID)
	}
	b.WriteString("\n-- \nModa Orgánica")
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
